package validator

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"vcc-feedback/internal/feedback"
	types "vcc-feedback/internal/types/feedback"
)

const (
	minRating     = 1
	maxRating     = 5
	maxBodyLength = 1000
)

// Тексты ошибок, которые показываются под полями формы
const (
	MsgRatingRange       = "1〜5 から選択してください"
	MsgBodyRequired      = "入力してください"
	MsgBodyTooLong       = "1000文字以内で入力してください"
	MsgVisibilityMissing = "公開可否を選択してください"
	MsgAgreeRequired     = "同意が必要です"
)

// Validate - проверяет все поля за один проход, без раннего выхода.
// Возвращает Draft, если ошибок нет, иначе nil и сообщения по полям.
func Validate(raw types.RawSubmission) (*types.Draft, types.FieldErrors) {
	errs := types.FieldErrors{}

	rating, ok := parseRating(raw.Rating)
	if !ok {
		errs[types.FieldRating] = MsgRatingRange
	}

	body := NormalizeBody(raw.Body)
	switch n := utf8.RuneCountInString(body); {
	case n == 0:
		errs[types.FieldBody] = MsgBodyRequired
	case n > maxBodyLength:
		errs[types.FieldBody] = MsgBodyTooLong
	}

	visibility, ok := feedback.ParseVisibility(raw.Visibility)
	if !ok {
		errs[types.FieldVisibility] = MsgVisibilityMissing
	}

	if !raw.Agree {
		errs[types.FieldAgree] = MsgAgreeRequired
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &types.Draft{
		Nickname:   optional(raw.Nickname),
		Cohort:     optional(raw.Cohort),
		Rating:     rating,
		Body:       body,
		Visibility: string(visibility),
	}, nil
}

// parseRating - число без дробной части в [1,5]. "5", " 4 ", "5.0" и "+3" проходят, "2.5" нет.
func parseRating(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || f < minRating || f > maxRating {
		return 0, false
	}
	return int(f), true
}

// NormalizeBody - браузер присылает переводы строк как CRLF, храним LF
func NormalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
