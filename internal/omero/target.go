package omero

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the type of a target object on the server.
type Kind string

const (
	KindImage   Kind = "Image"
	KindDataset Kind = "Dataset"
	KindProject Kind = "Project"
	KindPlate   Kind = "Plate"
	KindScreen  Kind = "Screen"
)

// Target addresses one object: a single image or a container whose images
// are enumerated through Gateway.ListImages.
type Target struct {
	Kind Kind
	ID   int64
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// IsContainer reports whether the target groups multiple images.
func (t Target) IsContainer() bool {
	return t.Kind != KindImage
}

var kindTitle = cases.Title(language.English)

// ParseTarget parses "<Kind>:<id>" object references. The kind is
// case-insensitive and optional: a bare ID addresses an image.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("empty target")
	}

	kind := KindImage
	idPart := s
	if before, after, found := strings.Cut(s, ":"); found {
		switch Kind(kindTitle.String(strings.ToLower(before))) {
		case KindImage:
			kind = KindImage
		case KindDataset:
			kind = KindDataset
		case KindProject:
			kind = KindProject
		case KindPlate:
			kind = KindPlate
		case KindScreen:
			kind = KindScreen
		default:
			return Target{}, fmt.Errorf("unknown target type %q", before)
		}
		idPart = after
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id < 1 {
		return Target{}, fmt.Errorf("invalid object id %q", idPart)
	}
	return Target{Kind: kind, ID: id}, nil
}

// ParseTargets parses a list of object references, failing on the first
// invalid one.
func ParseTargets(args []string) ([]Target, error) {
	targets := make([]Target, 0, len(args))
	for _, arg := range args {
		t, err := ParseTarget(arg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
