package handlers

import (
	"log"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tripwindow/planner"
)

var registerOnce sync.Once

// RegisterValidators adds the isodate and iata tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("⚠️  gin validator engine is not go-playground/validator; custom tags unavailable")
			return
		}
		if err := v.RegisterValidation("isodate", isoDate); err != nil {
			log.Printf("❌ register isodate: %v", err)
		}
		if err := v.RegisterValidation("iata", iataCode); err != nil {
			log.Printf("❌ register iata: %v", err)
		}
	})
}

// isoDate accepts YYYY-MM-DD calendar dates.
func isoDate(fl validator.FieldLevel) bool {
	_, err := planner.ParseDate(fl.Field().String())
	return err == nil
}

// iataCode accepts three-letter airport codes in either case.
func iataCode(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
