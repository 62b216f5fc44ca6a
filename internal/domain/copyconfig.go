package domain

import (
	"errors"
	"strings"
)

// FieldMappingPair maps one source field code onto one target field code.
// Pairs are applied in order; a target code appearing twice means the later
// pair wins wherever overwriting is permitted.
type FieldMappingPair struct {
	SourceFieldCode string `yaml:"source" json:"source"`
	TargetFieldCode string `yaml:"target" json:"target"`
}

// GridMappingPair maps one source grid code onto one target grid code.
type GridMappingPair struct {
	SourceGridCode string `yaml:"source" json:"source"`
	TargetGridCode string `yaml:"target" json:"target"`
}

// CopyConfiguration declares one cross-document copy: where the data comes
// from, where it goes, and which parts travel.
type CopyConfiguration struct {
	SourceDocumentTypeID int64 `yaml:"sourceDocumentTypeId" json:"sourceDocumentTypeId"`
	SourceFormID         int64 `yaml:"sourceFormId" json:"sourceFormId"`
	TargetDocumentTypeID int64 `yaml:"targetDocumentTypeId" json:"targetDocumentTypeId"`
	TargetFormID         int64 `yaml:"targetFormId" json:"targetFormId"`

	// SourceSubmissionID, when > 0, overrides the submission id passed to
	// ExecuteCopy. Zero means no source submission (provisioning-only).
	SourceSubmissionID int64 `yaml:"sourceSubmissionId" json:"sourceSubmissionId"`

	CreateNewDocument bool   `yaml:"createNewDocument" json:"createNewDocument"`
	TargetDocumentID  int64  `yaml:"targetDocumentId" json:"targetDocumentId"`
	InitialStatus     string `yaml:"initialStatus" json:"initialStatus"`

	FieldMapping []FieldMappingPair `yaml:"fieldMapping" json:"fieldMapping"`
	GridMapping  []GridMappingPair  `yaml:"gridMapping" json:"gridMapping"`

	CopyCalculatedFields   bool     `yaml:"copyCalculatedFields" json:"copyCalculatedFields"`
	OverrideTargetDefaults bool     `yaml:"overrideTargetDefaults" json:"overrideTargetDefaults"`
	CopyGridRows           bool     `yaml:"copyGridRows" json:"copyGridRows"`
	CopyMetadata           bool     `yaml:"copyMetadata" json:"copyMetadata"`
	MetadataFields         []string `yaml:"metadataFields" json:"metadataFields"`
	CopyAttachments        bool     `yaml:"copyAttachments" json:"copyAttachments"`
	LinkDocuments          bool     `yaml:"linkDocuments" json:"linkDocuments"`
	StartWorkflow          bool     `yaml:"startWorkflow" json:"startWorkflow"`
}

func (c CopyConfiguration) Validate() error {
	if c.TargetDocumentTypeID == 0 {
		return errors.New("target document type id is required")
	}
	if c.TargetFormID == 0 {
		return errors.New("target form id is required")
	}
	if !c.CreateNewDocument && c.TargetDocumentID == 0 {
		return errors.New("target document id is required when not creating a new document")
	}
	for _, pair := range c.FieldMapping {
		if strings.TrimSpace(pair.SourceFieldCode) == "" || strings.TrimSpace(pair.TargetFieldCode) == "" {
			return errors.New("field mapping entries require source and target codes")
		}
	}
	for _, pair := range c.GridMapping {
		if strings.TrimSpace(pair.SourceGridCode) == "" || strings.TrimSpace(pair.TargetGridCode) == "" {
			return errors.New("grid mapping entries require source and target codes")
		}
	}
	return nil
}

// NormalizedInitialStatus returns the status a newly created target document
// starts in. Anything other than "Submitted" becomes "Draft".
func (c CopyConfiguration) NormalizedInitialStatus() string {
	return NormalizeStatus(c.InitialStatus)
}
