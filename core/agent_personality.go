package core

const (
	MelchiorName  = "melchior"
	BalthasarName = "balthasar"
	CasperName    = "casper"
)

// Personality defines a council member and its decision-making bias
type Personality struct {
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Role        string   `json:"role"`
	Traits      []string `json:"traits"`
	// RejectProbability is the chance the member denies a proposal when
	// nothing in the proposal sways it.
	RejectProbability float64 `json:"reject_probability"`
}

var (
	Melchior = Personality{
		Name:              MelchiorName,
		Designation:       "MELCHIOR-1",
		Role:              "scientist",
		Traits:            []string{"logic", "science", "status quo"},
		RejectProbability: 0.2,
	}
	Balthasar = Personality{
		Name:              BalthasarName,
		Designation:       "BALTHASAR-2",
		Role:              "mother",
		Traits:            []string{"protect humanity", "safety", "benevolence"},
		RejectProbability: 0.05,
	}
	Casper = Personality{
		Name:              CasperName,
		Designation:       "CASPER-3",
		Role:              "woman",
		Traits:            []string{"emotional", "intuitive", "unpredictable"},
		RejectProbability: 0.5,
	}
)

// Personalities returns the council in voting order
func Personalities() []Personality {
	return []Personality{Melchior, Balthasar, Casper}
}
