package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// PersonID records the applicant identifier under the key "person_id".
// If id is nil, it returns an empty Attr.
func PersonID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("person_id", id)
}

// ApplicationID records the application identifier under the key
// "application_id". If id is nil, it returns an empty Attr.
func ApplicationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("application_id", id)
}

// Step records a wizard step index under the key "step".
func Step(index int) slog.Attr {
	return slog.Int("step", index)
}

// Field records a form field path under the key "field".
func Field(path string) slog.Attr {
	return slog.String("field", path)
}

// Component records the originating component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
