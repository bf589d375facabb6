package domain

// DialogStep - шаг диалога пользователя. Переходы между шагами выполняют
// только обработчики диалогов, любая другая комбинация шага и ввода
// отбрасывается без изменения состояния.
type DialogStep int

const (
	StepIdle DialogStep = iota
	StepAskGenre
	StepAskYear
	StepAskRating
	StepAskSearchQuery
)

func (s DialogStep) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAskGenre:
		return "ask_genre"
	case StepAskYear:
		return "ask_year"
	case StepAskRating:
		return "ask_rating"
	case StepAskSearchQuery:
		return "ask_search_query"
	default:
		return "unknown"
	}
}

// SessionState - состояние одного чата: активный диалог, критерии подбора
// и текущая выдача пагинации. Живет только в памяти процесса.
type SessionState struct {
	CorrelationID string
	Step          DialogStep
	Criteria      DiscoveryCriteria
	Results       []Movie
	CurrentIndex  int
}

// SetResults заменяет выдачу пагинации новым списком. Список заменяется
// целиком, дозагрузка страниц не выполняется.
func (s *SessionState) SetResults(movies []Movie) {
	s.Results = movies
	s.CurrentIndex = 0
}
