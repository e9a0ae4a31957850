package helper

import "github.com/go-playground/validator/v10"

// Validate is the shared validator instance used by all controllers.
var Validate = validator.New()
