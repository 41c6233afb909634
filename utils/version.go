package utils

import (
	"fmt"
	"runtime"
)

// These are set at build time with -ldflags.
var (
	VersionMajor = "1"
	VersionMinor = "0"
	VersionPatch = "0"
	Branch       = "main"
	Commit       = "dev"
	BuildDate    = "unknown"
)

// VersionObject is the structured form of the build version.
type VersionObject struct {
	Major     string `json:"major"`
	Minor     string `json:"minor"`
	Patch     string `json:"patch"`
	Branch    string `json:"branch"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	Arch      string `json:"arch"`
}

// Version carries the tag, the full display string and the object form.
type Version struct {
	Tag string        `json:"tag"`
	Str string        `json:"str"`
	Obj VersionObject `json:"obj"`
}

// GetVersion constructs the version information for the service.
func GetVersion() Version {
	commitShort := Commit
	if len(Commit) > 7 {
		commitShort = Commit[:7]
	}

	obj := VersionObject{
		Major:     VersionMajor,
		Minor:     VersionMinor,
		Patch:     VersionPatch,
		Branch:    Branch,
		Commit:    commitShort,
		BuildDate: BuildDate,
		Arch:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	tag := fmt.Sprintf("%s.%s.%s", obj.Major, obj.Minor, obj.Patch)
	return Version{
		Tag: tag,
		Str: fmt.Sprintf("%s-%s+%s.%s", tag, obj.Branch, obj.Commit, obj.BuildDate),
		Obj: obj,
	}
}
