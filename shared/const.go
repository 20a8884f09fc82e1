package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser  = "user"
	RoleAdmin = "admin"

	MembershipMember    = "member"
	MembershipNonMember = "non_member"

	TestModePsikotes = "psikotes"
	TestModeCPNS     = "cpns"
	TestModeTPA      = "tpa"

	CategoryVerbal      = "verbal"
	CategoryNumeric     = "numerik"
	CategoryLogic       = "logika"
	CategorySpatial     = "spasial"
	CategoryAnalytic    = "analitik"
	CategoryKepribadian = "kepribadian"

	DifficultyEasy   = "mudah"
	DifficultyMedium = "sedang"
	DifficultyHard   = "sulit"

	QuestionTypeMultipleChoice = "multiple_choice"

	DuelKindKreplin = "kreplin"
	DuelKindTest    = "test"

	DuelStatusWaiting   = "waiting"
	DuelStatusReady     = "ready"
	DuelStatusActive    = "active"
	DuelStatusCompleted = "completed"
)

// User-facing messages are Indonesian; internals stay in logs only.
const (
	MsgInternalError         = "Terjadi kesalahan pada server. Silakan coba lagi."
	MsgGenerationUnavailable = "Layanan pembuatan soal sedang tidak tersedia. Silakan coba beberapa saat lagi."
)

func ValidCategories() []string {
	return []string{
		CategoryVerbal,
		CategoryNumeric,
		CategoryLogic,
		CategorySpatial,
		CategoryAnalytic,
		CategoryKepribadian,
	}
}

func ValidDifficulties() []string {
	return []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
}
