package domain

import (
	"fmt"
	"time"
)

// ArrangementStatus tracks an arrangement through the processing pipeline.
type ArrangementStatus string

const (
	ArrangementPendingUpload            ArrangementStatus = "pending_upload"
	ArrangementReadyToProcess           ArrangementStatus = "ready_to_process"
	ArrangementMergingFiles             ArrangementStatus = "merging_files"
	ArrangementReadingFile              ArrangementStatus = "reading_file"
	ArrangementExtractingMetadata       ArrangementStatus = "extracting_metadata"
	ArrangementCreatingCategoryFolder   ArrangementStatus = "creating_category_folder"
	ArrangementCreatingArrangementFolder ArrangementStatus = "creating_arrangement_folder"
	ArrangementProcessingParts          ArrangementStatus = "processing_parts"
	ArrangementDone                     ArrangementStatus = "done"
	ArrangementAllPartsProcessed        ArrangementStatus = "all_parts_processed"
	ArrangementError                    ArrangementStatus = "error"
)

// Terminal reports whether no further transitions are possible.
func (s ArrangementStatus) Terminal() bool {
	return s == ArrangementDone || s == ArrangementAllPartsProcessed || s == ArrangementError
}

// PartStatus tracks a single part through split, name and upload.
type PartStatus string

const (
	PartPending   PartStatus = "pending"
	PartSplitting PartStatus = "splitting"
	PartNaming    PartStatus = "naming"
	PartUploading PartStatus = "uploading"
	PartDone      PartStatus = "done"
	PartError     PartStatus = "error"
)

// InputFile is one raw source file attached to an arrangement.
type InputFile struct {
	Name string
	Data []byte
}

// PartDescriptor is the immutable page-range description of one part,
// as returned by metadata extraction. Pages are 1-indexed inclusive.
type PartDescriptor struct {
	Label           string `json:"label"`
	IsFullScore     bool   `json:"is_full_score"`
	StartPage       int    `json:"start_page"`
	EndPage         int    `json:"end_page"`
	Instrumentation string `json:"instrumentation"`
}

// Part is one physical section of the working document destined for its
// own uploaded file.
type Part struct {
	ID            string         `json:"id"`
	ArrangementID string         `json:"arrangement_id"`
	Ordinal       int            `json:"ordinal"`
	Descriptor    PartDescriptor `json:"descriptor"`
	Status        PartStatus     `json:"status"`
	Message       string         `json:"message"`
	Filename      string         `json:"filename,omitempty"`
	FileID        string         `json:"file_id,omitempty"`
	ErrorDetail   string         `json:"error,omitempty"`
}

// PartID derives a part identity from its parent, label and ordinal.
// The ordinal keeps ids unique when two parts share a label.
func PartID(arrangementID, label string, ordinal int) string {
	return fmt.Sprintf("%s/part-%d-%s", arrangementID, ordinal, label)
}

// ExtractedMetadata holds the validated output of the extraction step.
type ExtractedMetadata struct {
	Title     string   `json:"title"`
	Composers []string `json:"composers"`
	Category  string   `json:"category"`
}

// Arrangement is one unit of work: one or more source files treated as a
// single document being organized into per-part uploads.
type Arrangement struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Files       []InputFile       `json:"-"`
	Status      ArrangementStatus `json:"status"`
	Message     string            `json:"message"`

	Metadata            *ExtractedMetadata `json:"metadata,omitempty"`
	CategoryFolderID    string             `json:"category_folder_id,omitempty"`
	ArrangementFolderID string             `json:"arrangement_folder_id,omitempty"`

	Parts       []*Part `json:"parts"`
	ErrorDetail string  `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewArrangement creates an arrangement waiting for files.
func NewArrangement(id string) *Arrangement {
	now := time.Now()
	return &Arrangement{
		ID:          id,
		DisplayName: fmt.Sprintf("Arrangement %s", shortID(id)),
		Status:      ArrangementPendingUpload,
		Message:     "waiting for files",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Snapshot returns a deep copy safe for concurrent readers. Input file
// bytes are not copied; progress display has no use for them.
func (a *Arrangement) Snapshot() Arrangement {
	cp := *a
	cp.Files = nil
	if a.Metadata != nil {
		md := *a.Metadata
		md.Composers = append([]string(nil), a.Metadata.Composers...)
		cp.Metadata = &md
	}
	cp.Parts = make([]*Part, len(a.Parts))
	for i, p := range a.Parts {
		pc := *p
		cp.Parts[i] = &pc
	}
	return cp
}

// PartCounts returns how many parts are done and how many errored.
func (a *Arrangement) PartCounts() (done, failed int) {
	for _, p := range a.Parts {
		switch p.Status {
		case PartDone:
			done++
		case PartError:
			failed++
		}
	}
	return done, failed
}
