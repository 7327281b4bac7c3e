package domain

type APIVersion string

const (
	APIVersionUnset APIVersion = ""
	APIVersion12    APIVersion = "1.2"
	APIVersion2004  APIVersion = "2004"
)

// APIShape names the object, verbs and data model elements of one SCORM
// version. Interception logic is written once against this shape.
type APIShape struct {
	Version          APIVersion
	ObjectName       string
	InitializeVerb   string
	GetValueVerb     string
	SetValueVerb     string
	CommitVerb       string
	LocationField    string
	ScoreField       string
	StatusField      string
	SuspendDataField string
}

var shapes = map[APIVersion]APIShape{
	APIVersion12: {
		Version:          APIVersion12,
		ObjectName:       "API",
		InitializeVerb:   "LMSInitialize",
		GetValueVerb:     "LMSGetValue",
		SetValueVerb:     "LMSSetValue",
		CommitVerb:       "LMSCommit",
		LocationField:    "cmi.core.lesson_location",
		ScoreField:       "cmi.core.score.raw",
		StatusField:      "cmi.core.lesson_status",
		SuspendDataField: "cmi.suspend_data",
	},
	APIVersion2004: {
		Version:          APIVersion2004,
		ObjectName:       "API_1484_11",
		InitializeVerb:   "Initialize",
		GetValueVerb:     "GetValue",
		SetValueVerb:     "SetValue",
		CommitVerb:       "Commit",
		LocationField:    "cmi.location",
		ScoreField:       "cmi.score.raw",
		StatusField:      "cmi.completion_status",
		SuspendDataField: "cmi.suspend_data",
	},
}

func ShapeFor(v APIVersion) (APIShape, bool) {
	s, ok := shapes[v]
	return s, ok
}

func ParseAPIVersion(raw string) (APIVersion, bool) {
	switch raw {
	case "1.2", "12", "scorm12":
		return APIVersion12, true
	case "2004", "scorm2004", "1484_11":
		return APIVersion2004, true
	}
	return APIVersionUnset, false
}
