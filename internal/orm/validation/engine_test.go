package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRules() Set {
	onCreate := On(EventCreate)
	return Set{
		"email": {
			{Key: "notempty", Error: "Email is required"},
			{Key: "email", Error: "Email is invalid"},
		},
		"password_confirm": {
			{Key: "match", Include: []string{"password"}, Error: "Passwords do not match", Events: &onCreate},
		},
	}
}

func TestEngine_ValidateNoErrorsReturnsTrue(t *testing.T) {
	e := NewEngine(userRules(), nil)

	ok, errs := e.Validate(map[string]any{
		"email":            "jane@example.com",
		"password":         "secret",
		"password_confirm": "secret",
	}, Options{Event: On(EventCreate)})

	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestEngine_ValidateFailuresReturnFalse(t *testing.T) {
	e := NewEngine(userRules(), nil)

	ok, errs := e.Validate(map[string]any{
		"email":            "",
		"password":         "secret",
		"password_confirm": "other",
	}, Options{Event: On(EventCreate)})

	assert.False(t, ok)
	assert.Equal(t, []string{"Email is required", "Email is invalid"}, errs["email"])
	assert.Equal(t, "Email is requiredEmail is invalid", errs.Field("email"))
	assert.Equal(t, "Passwords do not match", errs.Field("password_confirm"))
	assert.Equal(t, 3, errs.Count())
	assert.Equal(t, []string{"email", "password_confirm"}, errs.Fields())
}

func TestEngine_EventFiltering(t *testing.T) {
	e := NewEngine(userRules(), nil)
	data := map[string]any{"email": "", "password": "a", "password_confirm": "b"}

	// default rule events are create and update; the empty event matches neither
	ok, errs := e.Validate(data, Options{})
	assert.True(t, ok)
	assert.Empty(t, errs)

	ok, errs = e.Validate(data, Options{Event: On(EventUpdate)})
	assert.False(t, ok)
	assert.True(t, errs.Has("email"))
	assert.False(t, errs.Has("password_confirm"))
}

func TestEngine_Display(t *testing.T) {
	e := NewEngine(Set{"name": {{Key: "notempty", Error: "<b>Name</b> & more"}}}, nil)

	ok, errs := e.Validate(map[string]any{}, Options{Event: On(EventCreate), Display: true})
	require.False(t, ok)
	assert.Equal(t, `<span class="error">Name &amp; more</span>`, errs.Field("name"))
}

func TestEngine_UnknownPredicatePasses(t *testing.T) {
	e := NewEngine(Set{"name": {{Key: "no_such_rule", Error: "never"}}}, nil)

	ok, _ := e.Validate(map[string]any{"name": ""}, Options{Event: On(EventCreate)})
	assert.True(t, ok)
}

type recordingChecker struct {
	calls []string
}

func (c *recordingChecker) Check(key string, value any, options map[string]any, includes map[string]any) bool {
	c.calls = append(c.calls, key)
	return false
}

func (c *recordingChecker) IsInteger(any) bool { return false }

func TestEngine_CustomChecker(t *testing.T) {
	checker := &recordingChecker{}
	e := NewEngine(Set{
		"b": {{Key: "second"}},
		"a": {{Key: "first"}, {Key: "also_first"}},
	}, checker)

	ok, errs := e.Validate(map[string]any{}, Options{Event: On(EventUpdate)})
	assert.False(t, ok)
	assert.Equal(t, []string{"first", "also_first", "second"}, checker.calls)
	assert.Equal(t, 3, errs.Count())
	assert.Same(t, checker, e.Checker())
}

func TestErrors_Map(t *testing.T) {
	errs := Errors{}
	errs.Add("a", "x")

	m := errs.Map()
	m["a"][0] = "changed"
	assert.Equal(t, "x", errs.Field("a"))
	assert.Equal(t, "", errs.Field("missing"))
}
