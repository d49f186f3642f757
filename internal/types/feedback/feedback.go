package feedback

// Имена полей формы, они же ключи в FieldErrors
const (
	FieldNickname   = "nickname"
	FieldCohort     = "cohort"
	FieldRating     = "rating"
	FieldBody       = "body"
	FieldVisibility = "visibility"
	FieldAgree      = "agree"
)

// RawSubmission - сырые значения полей формы в том виде, в каком их прислал браузер
type RawSubmission struct {
	Nickname   string `json:"nickname"`
	Cohort     string `json:"cohort"`
	Rating     string `json:"rating"`
	Body       string `json:"body"`
	Visibility string `json:"visibility"`
	Agree      bool   `json:"agree"`
}

// Draft - провалидированная отправка, из которой строится запись.
// Nickname и Cohort равны nil, если после trim ничего не осталось.
type Draft struct {
	Nickname   *string
	Cohort     *string
	Rating     int
	Body       string
	Visibility string
}

// FieldErrors - сообщения об ошибках по именам полей
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}
