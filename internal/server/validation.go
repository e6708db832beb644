package server

import (
	"errors"
	"fmt"
	"sync"

	"web-desktop/internal/desktop"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce   sync.Once
	errInvalidEvent = errors.New("invalid event")
)

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("appkind", func(fl validator.FieldLevel) bool {
			_, err := desktop.ParseKind(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("windowid", func(fl validator.FieldLevel) bool {
			_, err := desktop.ParseWindowID(fl.Field().String())
			return err == nil
		})
	})
}

var eventMessages = bindMessages{
	"Type": {
		"required": "event type is required",
		"oneof":    "unknown event type",
	},
	"Kind":   {"appkind": "unknown application"},
	"Window": {"windowid": "invalid window id"},
	"Action": {"oneof": "unknown action"},
	"Tiles":  {"oneof": "tiles must be 4, 8 or 16"},
	"Index":  {"gte": "index out of range", "lte": "index out of range"},
	"Scroll": {"gte": "scroll must not be negative"},
	"Key":    {"max": "key is too long"},
	"Text":   {"max": "text is too long"},
}

// validateEvent checks an event that did not arrive through gin binding.
func validateEvent(ev *inboundEvent) error {
	if err := binding.Validator.ValidateStruct(ev); err != nil {
		return fmt.Errorf("%w: %s", errInvalidEvent, resolveBindError(err, eventMessages, ""))
	}
	return requireEventFields(ev)
}

// requireEventFields enforces the fields each event type needs.
func requireEventFields(ev *inboundEvent) error {
	missing := ""
	switch ev.Type {
	case eventLaunch:
		if ev.Kind == "" {
			missing = "kind"
		}
	case eventKeyUp:
		if ev.Key == "" {
			missing = "key"
		}
	case eventPointerDown, eventDragStart, eventClose:
		if ev.Window == "" {
			missing = "window"
		}
	case eventAction:
		if ev.Window == "" {
			missing = "window"
		} else if ev.Action == "" {
			missing = "action"
		}
	}
	if missing != "" {
		return fmt.Errorf("%w: %s is required", errInvalidEvent, missing)
	}
	return nil
}
