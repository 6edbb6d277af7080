package bgx

// User is the profile snapshot returned by the BGX API.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	IsRider       bool   `json:"is_rider"`
	IsClubAdmin   bool   `json:"is_club_admin"`
	IsSystemAdmin bool   `json:"is_system_admin"`
	IsActivated   bool   `json:"is_activated"`
	DateJoined    string `json:"date_joined"`
}

// MatchQuery carries the personal data submitted to the rider matcher.
// FirstName and LastName are mandatory; the rest narrow the search.
type MatchQuery struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	LicenseNumber string `json:"license_number,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
}

// RiderCandidate is a historical rider record that may be claimed.
type RiderCandidate struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	LicenseNumber string `json:"license_number,omitempty"`
	Club          string `json:"club,omitempty"`
	IsLicensed    bool   `json:"is_licensed"`
}

// MatchResult is the matcher response. Message is always present and is
// the user-facing explanation when Matches is empty.
type MatchResult struct {
	Matches []RiderCandidate `json:"matches"`
	Message string           `json:"message"`
}

// ClaimRequest links new credentials to an existing rider record.
type ClaimRequest struct {
	RiderID   int64  `json:"rider_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type ClaimResult struct {
	ActivationCode string `json:"activation_code"`
	User           User   `json:"user"`
	Message        string `json:"message"`
}

// RegisterRequest creates a brand-new account with no rider linkage.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RegisterResult struct {
	ActivationCode string `json:"activation_code"`
	User           User   `json:"user"`
	Message        string `json:"message"`
}

// ActivationResult is a freshly activated account plus its first token pair.
type ActivationResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
	Message string `json:"message"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ---------------------------------------------------------------------------
// Read-only listing types
// ---------------------------------------------------------------------------

type Championship struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
}

type Race struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Status           string `json:"status"`
	RegistrationOpen bool   `json:"registration_open"`
}

type RaceDay struct {
	ID        int64  `json:"id"`
	Race      int64  `json:"race"`
	DayNumber int    `json:"day_number"`
	Date      string `json:"date"`
	Type      string `json:"type"`
}

type RaceDayResult struct {
	ID        int64  `json:"id"`
	RaceDay   int64  `json:"race_day"`
	Rider     int64  `json:"rider"`
	RiderName string `json:"rider_name"`
	Position  int    `json:"position"`
	Time      string `json:"time"`
	Points    int    `json:"points"`
}

type RaceResult struct {
	ID              int64  `json:"id"`
	Race            int64  `json:"race"`
	RaceName        string `json:"race_name"`
	Rider           int64  `json:"rider"`
	RiderName       string `json:"rider_name"`
	RiderClub       string `json:"rider_club"`
	Category        string `json:"category"`
	OverallPosition int    `json:"overall_position"`
	TotalTime       string `json:"total_time"`
	TotalPoints     int    `json:"total_points"`
}

type ChampionshipResult struct {
	ID                int64  `json:"id"`
	Championship      int64  `json:"championship"`
	ChampionshipName  string `json:"championship_name"`
	Rider             int64  `json:"rider"`
	RiderName         string `json:"rider_name"`
	TotalPoints       int    `json:"total_points"`
	RacesParticipated int    `json:"races_participated"`
}

type Rider struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Club          string `json:"club"`
	LicenseNumber string `json:"license_number"`
	IsLicensed    bool   `json:"is_licensed"`
}
