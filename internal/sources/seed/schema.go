package seed

// UserEntry is one pre-provisioned account in seed.yaml.
type UserEntry struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ListingEntry is one demo listing in seed.yaml. ExpiryDays is the
// lifetime in days from seeding time; zero means the full window.
type ListingEntry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       int    `yaml:"price"`
	Owner       string `yaml:"owner"`
	Province    string `yaml:"province"`
	City        string `yaml:"city"`
	Contact     string `yaml:"contact"`
	ExpiryDays  int    `yaml:"expiryDays"`
}

// Config is the root structure of seed.yaml.
type Config struct {
	Users    []UserEntry    `yaml:"users"`
	Listings []ListingEntry `yaml:"listings"`
}
