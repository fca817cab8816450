package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Name_Fallbacks(t *testing.T) {
	u := &User{DisplayName: "Kim"}
	assert.Equal(t, "Kim", u.Name())

	u = &User{Emails: []Email{{Address: "kim@example.com"}}}
	assert.Equal(t, "kim@example.com", u.Name())

	u = &User{}
	assert.Equal(t, "Anonymous", u.Name())
}

func TestUser_VerifiedEmail(t *testing.T) {
	u := &User{
		Emails: []Email{
			{Address: "old@example.com", Verified: false},
			{Address: "kim@example.com", Verified: true},
		},
	}

	assert.Equal(t, "kim@example.com", u.VerifiedEmail())

	u.Emails[1].Verified = false
	assert.Equal(t, "", u.VerifiedEmail())
}

func TestUser_HasEmail(t *testing.T) {
	u := &User{Emails: []Email{{Address: "kim@example.com"}}}

	assert.True(t, u.HasEmail("kim@example.com"))
	assert.False(t, u.HasEmail("other@example.com"))
}

func TestGameOption_Allows(t *testing.T) {
	opt := &GameOption{Name: "type", Values: []string{"soccer", "ultimate"}}

	assert.True(t, opt.Allows("soccer"))
	assert.False(t, opt.Allows("hockey"))
}
