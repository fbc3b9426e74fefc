package comments

import (
	"testing"

	"github.com/pbxfmt/pbx/pbxval"
)

func buildSampleProject() *pbxval.Mapping {
	root := pbxval.NewMapping()
	objects := pbxval.NewMapping()

	fileRef := pbxval.NewMapping()
	fileRef.Set("isa", pbxval.String("PBXFileReference"))
	fileRef.Set("path", pbxval.String("main.c"))
	objects.Set("FILEREF0000000000000001", fileRef)

	phase := pbxval.NewMapping()
	phase.Set("isa", pbxval.String("PBXSourcesBuildPhase"))
	phase.Set("files", pbxval.Sequence{pbxval.String("BUILDFILE000000000000001")})
	objects.Set("PHASE000000000000000001", phase)

	buildFile := pbxval.NewMapping()
	buildFile.Set("isa", pbxval.String("PBXBuildFile"))
	buildFile.Set("fileRef", pbxval.String("FILEREF0000000000000001"))
	objects.Set("BUILDFILE000000000000001", buildFile)

	config := pbxval.NewMapping()
	config.Set("isa", pbxval.String("XCBuildConfiguration"))
	config.Set("name", pbxval.String("Debug"))
	objects.Set("CONFIG00000000000000001", config)

	configList := pbxval.NewMapping()
	configList.Set("isa", pbxval.String("XCConfigurationList"))
	configList.Set("buildConfigurations", pbxval.Sequence{pbxval.String("CONFIG00000000000000001")})
	objects.Set("CONFIGLIST0000000000001", configList)

	target := pbxval.NewMapping()
	target.Set("isa", pbxval.String("PBXNativeTarget"))
	target.Set("name", pbxval.String("MyApp"))
	target.Set("buildConfigurationList", pbxval.String("CONFIGLIST0000000000001"))
	objects.Set("TARGET0000000000000001", target)

	project := pbxval.NewMapping()
	project.Set("isa", pbxval.String("PBXProject"))
	project.Set("mainGroup", pbxval.String("GROUP000000000000000001"))
	objects.Set("PROJECT0000000000000001", project)

	root.Set("objects", objects)
	return root
}

func TestSynthesizeFileReference(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "MyApp")
	got, ok := table.Lookup("FILEREF0000000000000001")
	if !ok || got != "main.c" {
		t.Errorf(`Lookup(fileref) = %q, %v, want "main.c", true`, got, ok)
	}
}

func TestSynthesizeBuildFileInPhase(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "MyApp")
	got, ok := table.Lookup("BUILDFILE000000000000001")
	if !ok || got != "main.c in Sources" {
		t.Errorf(`Lookup(buildfile) = %q, %v, want "main.c in Sources", true`, got, ok)
	}
}

func TestSynthesizeConfigurationList(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "MyApp")
	got, ok := table.Lookup("CONFIGLIST0000000000001")
	want := `Build configuration list for PBXNativeTarget "MyApp"`
	if !ok || got != want {
		t.Errorf("Lookup(configlist) = %q, %v, want %q, true", got, ok, want)
	}
}

func TestSynthesizeBuildConfigurationName(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "MyApp")
	got, ok := table.Lookup("CONFIG00000000000000001")
	if !ok || got != "Debug" {
		t.Errorf(`Lookup(config) = %q, %v, want "Debug", true`, got, ok)
	}
}

func TestSynthesizeProjectObjectUsesProjectName(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "MyApp")
	got, ok := table.Lookup("PROJECT0000000000000001")
	if !ok || got != "MyApp" {
		t.Errorf(`Lookup(project) = %q, %v, want "MyApp", true`, got, ok)
	}
}

func TestSynthesizeProjectObjectFallsBackWithoutProjectName(t *testing.T) {
	t.Parallel()
	table := Synthesize(buildSampleProject(), "")
	got, ok := table.Lookup("PROJECT0000000000000001")
	if !ok || got != "Project object" {
		t.Errorf(`Lookup(project) = %q, %v, want "Project object", true`, got, ok)
	}
}

func TestLookupOnNilTable(t *testing.T) {
	t.Parallel()
	var table *Table
	if _, ok := table.Lookup("anything"); ok {
		t.Error("Lookup on nil table returned ok=true")
	}
}
