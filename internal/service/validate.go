package service

import "github.com/egghunt/egghunt-server/internal/validation"

// validate is the shared request validator for all services.
var validate = validation.New()
