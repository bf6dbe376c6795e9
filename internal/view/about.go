package view

// TeamMember はAbout画面のメンバーカード。
type TeamMember struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// About はAbout画面のビューモデル。
type About struct {
	Title   string       `json:"title"`
	Mission string       `json:"mission"`
	Team    []TeamMember `json:"team"`
}

const mission = "Plan It is your all-in-one platform for organizing events, managing savings, and collaborating efficiently. " +
	"Our mission is to simplify planning and coordination, making life easier for individuals, teams, and businesses."

// AboutPage は静的なAbout画面を返す。
func AboutPage() About {
	return About{
		Title:   "About Plan It",
		Mission: mission,
		Team: []TeamMember{
			{
				Name:        "Sebastian Bastida Marin",
				Role:        "Developer",
				Description: "Sebastian is the sole developer behind Plan It, ensuring smooth performance and great features.",
				Image:       "/sbm.jpg",
			},
			{Name: "...", Role: "Marketing", Description: "...", Image: "/profile.png"},
			{Name: "...", Role: "Marketing", Description: "...", Image: "/profile.png"},
		},
	}
}
