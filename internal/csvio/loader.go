// Package csvio loads the five generation catalogues from CSV files. List
// fields (faculty ids, grade-sections, applicability) are semicolon separated
// inside a single cell.
package csvio

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/Likhith025/timetablegen/internal/models"
)

type roomRow struct {
	Room     string `csv:"room"`
	Capacity int    `csv:"capacity"`
	Building string `csv:"building"`
}

type facultyRow struct {
	ID   string `csv:"id"`
	Name string `csv:"name"`
	Mail string `csv:"mail"`
}

type gradeSectionRow struct {
	Grade    string `csv:"grade"`
	Section  string `csv:"section"`
	Strength int    `csv:"strength"`
	Policy   string `csv:"classAssignmentType"`
}

type subjectRow struct {
	Code          string `csv:"code"`
	Subject       string `csv:"subject"`
	FacultyIDs    string `csv:"facultyIds"`
	GradeSections string `csv:"gradeSections"`
	ClassesWeek   int    `csv:"classesWeek"`
	IsCombined    bool   `csv:"isCombined"`
}

type timeSlotRow struct {
	Day          string `csv:"day"`
	StartTime    string `csv:"startTime"`
	EndTime      string `csv:"endTime"`
	ApplicableTo string `csv:"applicableTo"`
}

// CataloguePaths names the five input files.
type CataloguePaths struct {
	Rooms         string
	Faculty       string
	GradeSections string
	Subjects      string
	TimeSlots     string
}

// LoadCatalogue reads and converts all five CSV files.
func LoadCatalogue(paths CataloguePaths) (models.Catalogue, error) {
	var cat models.Catalogue

	var rooms []*roomRow
	if err := unmarshalFile(paths.Rooms, &rooms); err != nil {
		return cat, err
	}
	for _, row := range rooms {
		cat.Rooms = append(cat.Rooms, models.Room{ID: row.Room, Capacity: row.Capacity, Building: row.Building})
	}

	var faculty []*facultyRow
	if err := unmarshalFile(paths.Faculty, &faculty); err != nil {
		return cat, err
	}
	for _, row := range faculty {
		cat.Faculty = append(cat.Faculty, models.Faculty{ID: row.ID, Name: row.Name, Mail: row.Mail})
	}

	var sections []*gradeSectionRow
	if err := unmarshalFile(paths.GradeSections, &sections); err != nil {
		return cat, err
	}
	for _, row := range sections {
		cat.GradeSections = append(cat.GradeSections, models.GradeSection{
			Grade:    row.Grade,
			Section:  row.Section,
			Strength: row.Strength,
			Policy:   models.RoomPolicy(row.Policy),
		})
	}

	var subjects []*subjectRow
	if err := unmarshalFile(paths.Subjects, &subjects); err != nil {
		return cat, err
	}
	for _, row := range subjects {
		refs, err := parseSectionRefs(row.GradeSections)
		if err != nil {
			return cat, fmt.Errorf("subject %s: %w", row.Code, err)
		}
		cat.Subjects = append(cat.Subjects, models.Subject{
			Code:          row.Code,
			Name:          row.Subject,
			FacultyIDs:    splitList(row.FacultyIDs),
			GradeSections: refs,
			ClassesWeek:   row.ClassesWeek,
			IsCombined:    row.IsCombined,
		})
	}

	var slots []*timeSlotRow
	if err := unmarshalFile(paths.TimeSlots, &slots); err != nil {
		return cat, err
	}
	for _, row := range slots {
		cat.TimeSlots = append(cat.TimeSlots, models.TimeSlot{
			Day:          row.Day,
			StartTime:    row.StartTime,
			EndTime:      row.EndTime,
			ApplicableTo: splitList(row.ApplicableTo),
		})
	}

	return cat, nil
}

func unmarshalFile(path string, dest interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseSectionRefs splits "9-A;10-B" into typed refs. The grade is everything
// before the last dash, so multi-dash grades stay intact.
func parseSectionRefs(raw string) ([]models.SectionRef, error) {
	var refs []models.SectionRef
	for _, part := range splitList(raw) {
		idx := strings.LastIndex(part, "-")
		if idx <= 0 || idx == len(part)-1 {
			return nil, fmt.Errorf("malformed grade-section %q", part)
		}
		refs = append(refs, models.SectionRef{Grade: part[:idx], Section: part[idx+1:]})
	}
	return refs, nil
}
