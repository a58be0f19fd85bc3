package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
)

// CreateVideoForm is the input of the create-video page.
type CreateVideoForm struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	ThumbnailURL string `json:"thumbnail_url" validate:"required,url"`
	PremiumPrice string `json:"premium_price" validate:"required,ether_amount"`
	WatchPrice   string `json:"watch_price" validate:"required,ether_amount"`
	// Deadline closes the premium window, as unix seconds.
	Deadline int64 `json:"deadline" validate:"required,future_unix"`
}

// CreateCampaignForm is the input of the create-campaign page.
type CreateCampaignForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Target      string `json:"target" validate:"required,ether_amount"`
	Deadline    int64  `json:"deadline" validate:"required,future_unix"`
	Image       string `json:"image" validate:"required,url"`
}

// FormError reports the first invalid field of a form.
type FormError struct {
	Field string
	Rule  string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("invalid %s: failed %s", e.Field, e.Rule)
}

func (e *FormError) UserMessage() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("Please fill in the %s.", humanize(e.Field))
	case "url":
		return fmt.Sprintf("Please provide a valid %s.", humanize(e.Field))
	case "ether_amount":
		return fmt.Sprintf("The %s must be greater than 0.", humanize(e.Field))
	case "future_unix":
		return "The deadline must be in the future."
	case "max":
		return fmt.Sprintf("The %s is too long.", humanize(e.Field))
	}
	return fmt.Sprintf("Please check the %s.", humanize(e.Field))
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

type formValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func newFormValidator(now func() time.Time) *formValidator {
	v := &formValidator{validate: validator.New(), now: now}
	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	mustRegister(v.validate, "future_unix", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() > v.now().Unix()
	})
	mustRegister(v.validate, "ether_amount", func(fl validator.FieldLevel) bool {
		wei, err := contracts.ParseEther(fl.Field().String())
		return err == nil && wei.Sign() > 0
	})
	return v
}

// mustRegister panics when a rule cannot be registered, which only happens
// for a malformed tag.
func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// Struct validates form and returns a *FormError for the first failing field.
func (v *formValidator) Struct(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return &FormError{Field: fieldErrors[0].Field(), Rule: fieldErrors[0].Tag()}
	}
	return err
}
