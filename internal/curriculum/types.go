package curriculum

// Document is a catalog file loaded from YAML.
type Document struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Credits    []string    `yaml:"credits"`
	Graduation *Graduation `yaml:"graduation"`
	Tracks     []TrackDoc  `yaml:"tracks"`
	Courses    []CourseDoc `yaml:"courses"`
}

// Graduation holds the graduation requirements of a catalog file.
type Graduation struct {
	Total        float64            `yaml:"total"`
	Requirements map[string]float64 `yaml:"requirements"`
}

// TrackDoc declares a linear track (e.g. Math: Algebra I, Geometry, ...).
type TrackDoc struct {
	Name      string           `yaml:"name"`
	Credit    string           `yaml:"credit"`
	AllHonors bool             `yaml:"all_honors"`
	NoCredit  bool             `yaml:"no_credit"`
	Courses   []TrackCourseDoc `yaml:"courses"`
}

// TrackCourseDoc is one level of a track.
type TrackCourseDoc struct {
	Name        string `yaml:"name"`
	Honors      bool   `yaml:"honors"`
	HonorsTitle string `yaml:"honors_title"`
	MinGrade    int    `yaml:"min_grade"`
}

// CourseDoc declares a course outside of a linear track.
type CourseDoc struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"` // generic (default), elective, special
	MinGrade    int       `yaml:"min_grade"`
	Honors      bool      `yaml:"honors"`
	HonorsTitle string    `yaml:"honors_title"`
	Worth       *float64  `yaml:"worth"`
	Credits     []string  `yaml:"credits"`
	Requires    []string  `yaml:"requires"`
	Track       *TrackRef `yaml:"track"`
}

// TrackRef places a course at a level of a track.
type TrackRef struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}
