package fixture

// Role names understood by the pizza front-end. A user carries at most one.
const (
	RoleDiner = "diner"
	RoleAdmin = "admin"
)

// Role is a single capability tag. The front-end reads roles as a list of
// objects, so the wire shape is `{"role":"admin"}` rather than a bare string.
type Role struct {
	Role string `json:"role" yaml:"role"`
}

// User is a seeded account the fixture accepts credentials for. The password
// travels in clear text; this is scripted test data, not an account store.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Roles    []Role `json:"roles" yaml:"roles"`
}

// HasRole reports whether the user carries the given capability tag.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// MenuItem is one orderable pizza.
type MenuItem struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Image       string  `json:"image" yaml:"image"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
}

// Store is a single location belonging to a franchise.
type Store struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Franchise groups stores under one operator.
type Franchise struct {
	ID     int     `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Stores []Store `json:"stores" yaml:"stores"`
}

// Data is everything the fixture serves. Collections are read-only once the
// backend holds them; swapping a whole Data value is the only mutation.
type Data struct {
	Users      []User      `yaml:"users"`
	Menu       []MenuItem  `yaml:"menu"`
	Franchises []Franchise `yaml:"franchises"`
}

// DefaultData returns the canonical seed set: two users, two pizzas, three
// franchises. Tests depend on these exact values, so change them only together
// with the scenarios that assert on them.
func DefaultData() Data {
	return Data{
		Users: []User{
			{
				ID:       "1",
				Name:     "Admin One",
				Email:    "admin@jwt.com",
				Password: "a",
				Roles:    []Role{{Role: RoleAdmin}},
			},
			{
				ID:       "3",
				Name:     "Kai Chen",
				Email:    "d@jwt.com",
				Password: "a",
				Roles:    []Role{{Role: RoleDiner}},
			},
		},
		Menu: []MenuItem{
			{ID: 1, Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"},
			{ID: 2, Title: "Pepperoni", Image: "pizza2.png", Price: 0.0042, Description: "Spicy treat"},
		},
		Franchises: []Franchise{
			{
				ID:   2,
				Name: "LotaPizza",
				Stores: []Store{
					{ID: 4, Name: "Lehi"},
					{ID: 5, Name: "Springville"},
					{ID: 6, Name: "American Fork"},
				},
			},
			{ID: 3, Name: "PizzaCorp", Stores: []Store{{ID: 7, Name: "Spanish Fork"}}},
			{ID: 4, Name: "topSpot", Stores: []Store{}},
		},
	}
}

// FindUser looks up a seeded user by email. The second return is false when no
// user carries that email.
func (d Data) FindUser(email string) (User, bool) {
	for _, u := range d.Users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}
