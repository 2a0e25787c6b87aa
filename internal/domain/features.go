package domain

import "sort"

// OperationTag is a non-exclusive label for one semantic effect category of a
// command segment. A segment carries every tag that applies.
type OperationTag string

const (
	TagFileDelete          OperationTag = "file_delete"
	TagFileWrite           OperationTag = "file_write"
	TagPermissionChange    OperationTag = "permission_change"
	TagNetworkFetch        OperationTag = "network_fetch"
	TagNetworkExec         OperationTag = "network_exec"
	TagPrivilegeEscalation OperationTag = "privilege_escalation"
	TagDiskFormat          OperationTag = "disk_format"
	TagPackageInstall      OperationTag = "package_install"
	TagGitDestructive      OperationTag = "git_destructive"
	TagUnparsable          OperationTag = "unparsable"
	TagUnknown             OperationTag = "unknown"
)

// Segment is one simple command inside a compound command line.
type Segment struct {
	Text    string         `json:"text"`
	Name    string         `json:"name,omitempty"`
	Tags    []OperationTag `json:"tags,omitempty"`
	Targets []string       `json:"targets,omitempty"`
}

// HasTag reports whether the segment carries the given tag.
func (s Segment) HasTag(tag OperationTag) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Modifiers capture cross-cutting attributes of the whole command line.
type Modifiers struct {
	Recursive          bool `json:"recursive,omitempty"`
	Force              bool `json:"force,omitempty"`
	Overwrite          bool `json:"overwrite,omitempty"`
	PipedToInterpreter bool `json:"piped_to_interpreter,omitempty"`
	ProtectedPath      bool `json:"protected_path,omitempty"`
}

// CommandFeatures is the structured risk-feature view of one candidate
// command string. It is a pure function of (command, protected-path config):
// recomputed per evaluation, never cached, never touching the filesystem.
type CommandFeatures struct {
	Raw              string    `json:"raw"`
	Segments         []Segment `json:"segments"`
	Modifiers        Modifiers `json:"modifiers"`
	Targets          []string  `json:"targets,omitempty"`
	ProtectedTargets []string  `json:"protected_targets,omitempty"`
	UnboundedScope   bool      `json:"unbounded_scope,omitempty"`
}

// HasTag reports whether any segment carries the given tag.
func (f CommandFeatures) HasTag(tag OperationTag) bool {
	for _, seg := range f.Segments {
		if seg.HasTag(tag) {
			return true
		}
	}
	return false
}

// Tags returns the sorted union of all segment tags.
func (f CommandFeatures) Tags() []OperationTag {
	seen := map[OperationTag]bool{}
	for _, seg := range f.Segments {
		for _, t := range seg.Tags {
			seen[t] = true
		}
	}
	tags := make([]OperationTag, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// OnlyUnrecognized reports whether the features carry nothing beyond
// Unparsable/Unknown tags. The classifier treats such input cautiously
// rather than as safe by default.
func (f CommandFeatures) OnlyUnrecognized() bool {
	sawAny := false
	for _, seg := range f.Segments {
		for _, t := range seg.Tags {
			sawAny = true
			if t != TagUnparsable && t != TagUnknown {
				return false
			}
		}
	}
	return sawAny
}
