package controller

// View selects the view file rendered for an action:
// views/<View>/<Prefix>.<Type>.<Extension>
type View struct {
	View      string
	Prefix    string
	Type      string
	Extension string
	Disable   bool
}

// Template selects the layout wrapping the view:
// templates/<Prefix>.<Type>.<Extension>
type Template struct {
	Prefix    string
	Type      string
	Extension string
	Disable   bool
}

// DefaultView returns the view descriptor every controller starts with
func DefaultView() View {
	return View{Type: "html", Extension: "tmpl"}
}

// DefaultTemplate returns the layout descriptor every controller starts with
func DefaultTemplate() Template {
	return Template{Prefix: "default", Type: "html", Extension: "tmpl"}
}

// Merge returns v with the non-zero fields of override applied. Disable is
// taken from override when it is set.
func (v View) Merge(override View) View {
	if override.View != "" {
		v.View = override.View
	}
	if override.Prefix != "" {
		v.Prefix = override.Prefix
	}
	if override.Type != "" {
		v.Type = override.Type
	}
	if override.Extension != "" {
		v.Extension = override.Extension
	}
	if override.Disable {
		v.Disable = true
	}
	return v
}

// Merge returns t with the non-zero fields of override applied
func (t Template) Merge(override Template) Template {
	if override.Prefix != "" {
		t.Prefix = override.Prefix
	}
	if override.Type != "" {
		t.Type = override.Type
	}
	if override.Extension != "" {
		t.Extension = override.Extension
	}
	if override.Disable {
		t.Disable = true
	}
	return t
}
