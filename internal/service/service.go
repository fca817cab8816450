// Package service implements the application's use cases on top of the store.
// Services validate input, enforce authorization, mutate state, and publish
// notification events after the mutation commits.
package service

import (
	"github.com/dwinston/pushpickup/internal/validation"
)

// validate is the shared request validator with the domain rules registered.
var validate = validation.New()
