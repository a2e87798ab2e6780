package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateEmotionScore, domain.EmotionScore{})
	return v
}

// validateEmotionScore checks one label/score pair of a distribution
func validateEmotionScore(sl validator.StructLevel) {
	es := sl.Current().Interface().(domain.EmotionScore)

	if !isEmotionLabel(string(es.Emotion)) {
		sl.ReportError(es.Emotion, "Emotion", "emotion", "emotion_label", "")
	}
	if es.Score < 0 {
		sl.ReportError(es.Score, "Score", "score", "gte", "0")
	}
}

// isEmotionLabel accepts lowercase labels made of letters and underscores
func isEmotionLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, r := range label {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// validateStruct runs the struct tags and folds failures into one AppError
func validateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ErrValidationFailed.WithError(err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}

	return domain.ErrValidationFailed.WithError(errors.New(strings.Join(msgs, "; ")))
}
