package timetable

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

func clock(raw string) models.Clock {
	c, err := models.ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func date(raw string) time.Time {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(v string) *string { return &v }

func theory(id string, weekday int, start, end, room, instructor string) models.Lecture {
	return models.Lecture{
		ID:           id,
		CourseID:     "course-" + id,
		InstructorID: instructor,
		RoomID:       room,
		Weekday:      weekday,
		StartTime:    clock(start),
		EndTime:      clock(end),
		Level:        1,
		Kind:         models.LectureKindTheoretical,
		Shift:        models.ShiftMorning,
		SectionID:    strPtr("section-a"),
	}
}

func practical(id string, weekday int, start, end, room, instructor string, assistants ...string) models.Lecture {
	l := theory(id, weekday, start, end, room, instructor)
	l.Kind = models.LectureKindPractical
	l.SectionID = nil
	l.GroupID = strPtr("group-1")
	l.AssistantIDs = assistants
	return l
}

func testDirectory() models.Directory {
	return models.NewDirectory(
		[]models.Room{{ID: "R1", Name: "Hall 1", Building: "Main"}, {ID: "R2", Name: "Lab 2"}},
		[]models.Instructor{{ID: "I1", FullName: "Dr. Salem"}, {ID: "I2", FullName: "Dr. Noor"}, {ID: "I3", FullName: "Eng. Rami"}},
		[]models.Course{{ID: "course-A", Code: "CS101"}, {ID: "course-B", Code: "CS102"}, {ID: "course-C", Code: "MA201"}},
	)
}
