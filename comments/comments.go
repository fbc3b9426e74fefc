// Package comments rebuilds the trailing "/* ... */" annotation Xcode
// writes next to every gid reference inside a project.pbxproj, by
// walking the "objects" mapping once and applying per-isa naming rules
// (spec.md §4.6).
package comments

import (
	"path"

	"github.com/pbxfmt/pbx/pbxval"
	"golang.org/x/text/unicode/norm"
)

// Table is a precomputed gid -> comment lookup built by Synthesize. Its
// Lookup method satisfies asciiplist.CommentFunc.
type Table struct {
	comments map[string]string
}

// Lookup returns the synthesized comment for gid, if any.
func (t *Table) Lookup(gid string) (string, bool) {
	if t == nil {
		return "", false
	}
	c, ok := t.comments[gid]
	return c, ok
}

// Synthesize walks root's "objects" mapping and computes a comment for
// every gid it can name, reverse-resolving build-phase ownership and
// configuration-list ownership in one pass first.
func Synthesize(root *pbxval.Mapping, projectName string) *Table {
	objects, _ := root.Mapping("objects")
	t := &Table{comments: make(map[string]string)}
	if objects == nil {
		return t
	}

	phaseOwner := map[string]string{}  // build-file gid -> owning phase gid
	listOwner := map[string]string{}   // config-list gid -> owning object gid
	proxyOwner := map[string]string{}  // container-item-proxy gid -> owning dependency gid
	for _, ownerGID := range objects.Keys() {
		obj, _ := objects.Mapping(ownerGID)
		if obj == nil {
			continue
		}
		isa, _ := obj.ISA()
		if files, ok := obj.Sequence("files"); ok && isPhase(isa) {
			for _, v := range files {
				if fgid, ok := v.(pbxval.String); ok {
					phaseOwner[string(fgid)] = ownerGID
				}
			}
		}
		if lgid, ok := obj.String("buildConfigurationList"); ok {
			listOwner[lgid] = ownerGID
		}
		if pgid, ok := obj.String("targetProxy"); ok {
			proxyOwner[pgid] = ownerGID
		}
	}

	for _, gid := range objects.Keys() {
		obj, _ := objects.Mapping(gid)
		if obj == nil {
			continue
		}
		if c, ok := commentFor(objects, gid, obj, projectName, phaseOwner, listOwner, proxyOwner); ok {
			t.comments[gid] = c
		}
	}
	return t
}

func isPhase(isa string) bool {
	switch isa {
	case "PBXSourcesBuildPhase", "PBXResourcesBuildPhase", "PBXFrameworksBuildPhase",
		"PBXHeadersBuildPhase", "PBXCopyFilesBuildPhase", "PBXShellScriptBuildPhase",
		"PBXRezBuildPhase":
		return true
	}
	return false
}

var phaseLabel = map[string]string{
	"PBXSourcesBuildPhase":    "Sources",
	"PBXResourcesBuildPhase":  "Resources",
	"PBXFrameworksBuildPhase": "Frameworks",
	"PBXHeadersBuildPhase":    "Headers",
	"PBXCopyFilesBuildPhase":  "CopyFiles",
	"PBXRezBuildPhase":        "Rez",
	"PBXShellScriptBuildPhase": "ShellScript",
}

// displayName computes the naming-rule result for one object, per
// spec.md §4.6. ok is false when no rule applies and the gid should be
// left uncommented.
func displayName(objects *pbxval.Mapping, gid string, obj *pbxval.Mapping, projectName string,
	phaseOwner, listOwner, proxyOwner map[string]string) (string, bool) {
	isa, _ := obj.ISA()
	switch isa {
	case "PBXFileReference":
		if name, ok := obj.String("name"); ok && name != "" {
			return normalizeName(name), true
		}
		if p, ok := obj.String("path"); ok && p != "" {
			return normalizeName(path.Base(p)), true
		}
		return "", false
	case "PBXGroup", "PBXVariantGroup":
		if name, ok := obj.String("name"); ok && name != "" {
			return normalizeName(name), true
		}
		if p, ok := obj.String("path"); ok && p != "" {
			return normalizeName(path.Base(p)), true
		}
		for _, k := range objects.Keys() {
			if pobj, ok := objects.Mapping(k); ok {
				if pisa, _ := pobj.ISA(); pisa == "PBXProject" {
					if mg, ok := pobj.String("mainGroup"); ok && mg == gid {
						return "<group>", true
					}
				}
			}
		}
		return "", false
	case "PBXBuildFile":
		refDisp := "(null)"
		if fref, ok := obj.String("fileRef"); ok {
			if fobj, ok := objects.Mapping(fref); ok {
				if d, ok := displayName(objects, fref, fobj, projectName, phaseOwner, listOwner, proxyOwner); ok {
					refDisp = d
				}
			}
		}
		phaseDisp := ""
		if phaseGID, ok := phaseOwner[gid]; ok {
			if pobj, ok := objects.Mapping(phaseGID); ok {
				if d, ok := displayName(objects, phaseGID, pobj, projectName, phaseOwner, listOwner, proxyOwner); ok {
					phaseDisp = d
				}
			}
		}
		if phaseDisp == "" {
			return refDisp, true
		}
		return refDisp + " in " + phaseDisp, true
	case "PBXSourcesBuildPhase", "PBXResourcesBuildPhase", "PBXFrameworksBuildPhase",
		"PBXHeadersBuildPhase", "PBXCopyFilesBuildPhase", "PBXRezBuildPhase", "PBXShellScriptBuildPhase":
		if name, ok := obj.String("name"); ok && name != "" {
			return normalizeName(name), true
		}
		return phaseLabel[isa], true
	case "PBXNativeTarget", "PBXAggregateTarget", "PBXLegacyTarget":
		if name, ok := obj.String("name"); ok {
			return normalizeName(name), true
		}
		return "", false
	case "XCBuildConfiguration":
		if name, ok := obj.String("name"); ok {
			return normalizeName(name), true
		}
		return "", false
	case "XCConfigurationList":
		ownerGID, ok := listOwner[gid]
		if !ok {
			return "Build configuration list", true
		}
		ownerObj, _ := objects.Mapping(ownerGID)
		ownerISA, ownerName := "", ""
		if ownerObj != nil {
			ownerISA, _ = ownerObj.ISA()
			if d, ok := displayName(objects, ownerGID, ownerObj, projectName, phaseOwner, listOwner, proxyOwner); ok {
				ownerName = d
			}
		}
		return `Build configuration list for ` + ownerISA + ` "` + ownerName + `"`, true
	case "PBXProject":
		if projectName == "" {
			return "Project object", true
		}
		return normalizeName(projectName), true
	case "PBXContainerItemProxy":
		return "PBXContainerItemProxy", true
	case "PBXTargetDependency":
		return "PBXTargetDependency", true
	case "PBXReferenceProxy":
		if name, ok := obj.String("name"); ok && name != "" {
			return normalizeName(name), true
		}
		if p, ok := obj.String("path"); ok && p != "" {
			return normalizeName(path.Base(p)), true
		}
		return "", false
	default:
		return "", false
	}
}

func commentFor(objects *pbxval.Mapping, gid string, obj *pbxval.Mapping, projectName string,
	phaseOwner, listOwner, proxyOwner map[string]string) (string, bool) {
	return displayName(objects, gid, obj, projectName, phaseOwner, listOwner, proxyOwner)
}

// normalizeName applies NFC normalization to names that may contain
// combining-character sequences, so that international project and file
// names (see spec.md's international-project testable property) compare
// and render the way Xcode itself would.
func normalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
