package logging

import "time"

// LogField creates a Field from a key-value pair.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// DurationField records a duration in seconds.
func DurationField(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Seconds()}
}

// DescriptorField tags an entry with a capability matrix row.
func DescriptorField(id string) Field {
	return Field{Key: "descriptor_id", Value: id}
}

// SessionField tags an entry with a remote session ID.
func SessionField(id string) Field {
	return Field{Key: "session_id", Value: id}
}

// CheckField tags an entry with a behavioral check ID.
func CheckField(id string) Field {
	return Field{Key: "check_id", Value: id}
}

// ErrorField creates a Field for an error value. If err is nil,
// the value is set to the string "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}
