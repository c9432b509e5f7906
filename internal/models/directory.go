package models

// Room is a bookable teaching space.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Building string `db:"building" json:"building"`
}

// Instructor is a person who can teach or assist a lecture.
type Instructor struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}

// Course is the subject a lecture delivers.
type Course struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Directory holds the reference data used to render human readable
// timetable output. Lookups fall back to the identifier when an entry is
// missing so messages stay attributable.
type Directory struct {
	Rooms       map[string]Room       `json:"rooms"`
	Instructors map[string]Instructor `json:"instructors"`
	Courses     map[string]Course     `json:"courses"`
}

// NewDirectory indexes reference rows by id.
func NewDirectory(rooms []Room, instructors []Instructor, courses []Course) Directory {
	dir := Directory{
		Rooms:       make(map[string]Room, len(rooms)),
		Instructors: make(map[string]Instructor, len(instructors)),
		Courses:     make(map[string]Course, len(courses)),
	}
	for _, r := range rooms {
		dir.Rooms[r.ID] = r
	}
	for _, i := range instructors {
		dir.Instructors[i.ID] = i
	}
	for _, c := range courses {
		dir.Courses[c.ID] = c
	}
	return dir
}

// CourseCode returns the course code for id.
func (d Directory) CourseCode(id string) string {
	if c, ok := d.Courses[id]; ok && c.Code != "" {
		return c.Code
	}
	return id
}

// RoomName returns the display name of a room, including its building when known.
func (d Directory) RoomName(id string) string {
	r, ok := d.Rooms[id]
	if !ok || r.Name == "" {
		return id
	}
	if r.Building != "" {
		return r.Name + " (" + r.Building + ")"
	}
	return r.Name
}

// InstructorName returns the display name of an instructor.
func (d Directory) InstructorName(id string) string {
	if i, ok := d.Instructors[id]; ok && i.FullName != "" {
		return i.FullName
	}
	return id
}
