package conversation

// Slot names form the fixed appointment schema. They double as the keys the
// extraction prompt instructs the model to emit.
const (
	SlotName       = "name"
	SlotDepartment = "department"
	SlotDoctor     = "doctor"
	SlotDate       = "date"
	SlotTime       = "time"
	SlotEmail      = "email"
	SlotMobile     = "mobile"
)

// SlotKeys lists the schema in summary order.
var SlotKeys = []string{
	SlotName, SlotDepartment, SlotDoctor, SlotDate, SlotTime, SlotEmail, SlotMobile,
}

// SlotSet is the accumulating appointment record for one session. A non-empty
// field means the value was previously extracted; an empty field means "not
// yet collected". Values are free-text strings, never validated.
type SlotSet struct {
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
	Doctor     string `json:"doctor,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Email      string `json:"email,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
}

// Merge folds newly extracted values into the set. A non-empty incoming value
// overwrites the stored one; empty values never clear a filled slot.
func (s *SlotSet) Merge(partial SlotSet) {
	for _, key := range SlotKeys {
		if v := partial.Get(key); v != "" {
			s.set(key, v)
		}
	}
}

// Get returns the value stored under the given slot key, or "" for unknown keys.
func (s *SlotSet) Get(key string) string {
	switch key {
	case SlotName:
		return s.Name
	case SlotDepartment:
		return s.Department
	case SlotDoctor:
		return s.Doctor
	case SlotDate:
		return s.Date
	case SlotTime:
		return s.Time
	case SlotEmail:
		return s.Email
	case SlotMobile:
		return s.Mobile
	}
	return ""
}

// set stores a value under a schema key. Unknown keys are ignored; the line
// parser filters against the schema before calling.
func (s *SlotSet) set(key, value string) bool {
	switch key {
	case SlotName:
		s.Name = value
	case SlotDepartment:
		s.Department = value
	case SlotDoctor:
		s.Doctor = value
	case SlotDate:
		s.Date = value
	case SlotTime:
		s.Time = value
	case SlotEmail:
		s.Email = value
	case SlotMobile:
		s.Mobile = value
	default:
		return false
	}
	return true
}

// FilledCount returns how many slots hold a value.
func (s *SlotSet) FilledCount() int {
	n := 0
	for _, key := range SlotKeys {
		if s.Get(key) != "" {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no slot has been filled yet.
func (s *SlotSet) IsEmpty() bool {
	return s.FilledCount() == 0
}

// Map returns the filled slots as a plain mapping for the turn response.
func (s *SlotSet) Map() map[string]string {
	out := make(map[string]string, len(SlotKeys))
	for _, key := range SlotKeys {
		if v := s.Get(key); v != "" {
			out[key] = v
		}
	}
	return out
}

// GetOr returns the slot value or the given placeholder when unset.
func (s *SlotSet) GetOr(key, placeholder string) string {
	if v := s.Get(key); v != "" {
		return v
	}
	return placeholder
}
