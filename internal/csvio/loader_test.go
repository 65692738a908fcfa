package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Likhith025/timetablegen/internal/models"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogue(t *testing.T) {
	dir := t.TempDir()
	paths := CataloguePaths{
		Rooms: writeCSV(t, dir, "rooms.csv",
			"room,capacity,building\nR101,40,Main\nR202,35,Annex\n"),
		Faculty: writeCSV(t, dir, "faculty.csv",
			"id,name,mail\nF1,Ada Lovelace,ada@school.edu\n"),
		GradeSections: writeCSV(t, dir, "sections.csv",
			"grade,section,strength,classAssignmentType\n9,A,32,same\n9,B,30,any\n"),
		Subjects: writeCSV(t, dir, "subjects.csv",
			"code,subject,facultyIds,gradeSections,classesWeek,isCombined\nMATH,Mathematics,F1,9-A;9-B,4,false\n"),
		TimeSlots: writeCSV(t, dir, "slots.csv",
			"day,startTime,endTime,applicableTo\nMonday,09:00,10:00,9-A;9-B\n"),
	}

	cat, err := LoadCatalogue(paths)
	require.NoError(t, err)

	require.Len(t, cat.Rooms, 2)
	assert.Equal(t, "R101", cat.Rooms[0].ID)
	assert.Equal(t, 40, cat.Rooms[0].Capacity)

	require.Len(t, cat.Faculty, 1)
	assert.Equal(t, "Ada Lovelace", cat.Faculty[0].Name)

	require.Len(t, cat.GradeSections, 2)
	assert.Equal(t, models.RoomPolicyFixed, cat.GradeSections[0].Policy)
	assert.Equal(t, models.RoomPolicyFlexible, cat.GradeSections[1].Policy)

	require.Len(t, cat.Subjects, 1)
	assert.Equal(t, []string{"F1"}, cat.Subjects[0].FacultyIDs)
	require.Len(t, cat.Subjects[0].GradeSections, 2)
	assert.Equal(t, models.SectionRef{Grade: "9", Section: "A"}, cat.Subjects[0].GradeSections[0])

	require.Len(t, cat.TimeSlots, 1)
	assert.Equal(t, []string{"9-A", "9-B"}, cat.TimeSlots[0].ApplicableTo)
}

func TestLoadCatalogueMissingFile(t *testing.T) {
	dir := t.TempDir()
	paths := CataloguePaths{
		Rooms:         filepath.Join(dir, "missing.csv"),
		Faculty:       filepath.Join(dir, "missing.csv"),
		GradeSections: filepath.Join(dir, "missing.csv"),
		Subjects:      filepath.Join(dir, "missing.csv"),
		TimeSlots:     filepath.Join(dir, "missing.csv"),
	}
	_, err := LoadCatalogue(paths)
	require.Error(t, err)
}

func TestParseSectionRefsMalformed(t *testing.T) {
	_, err := parseSectionRefs("9A")
	require.Error(t, err)

	refs, err := parseSectionRefs("10-A;11-B")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "11", refs[1].Grade)
}
