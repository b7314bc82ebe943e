package ioadapter

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AcquisitionMeta is the YAML-persisted metadata accompanying each
// acquisition, consumed but not produced by the
// registration core except for the end_tiles field, which
// cmd/flowcell-align writes back after bounds.Find returns.
type AcquisitionMeta struct {
	AlignmentChannel string `yaml:"alignment_channel"`
	MicronsPerPixel float64 `yaml:"microns_per_pixel"`
	ChipType string `yaml:"chip_type"`
	PortsOnRight bool `yaml:"ports_on_right"`
	EndTiles *EndTilesCache `yaml:"end_tiles,omitempty"`
	PhixAligned bool `yaml:"phix_aligned"`
	ProteinChannelsAligned []string `yaml:"protein_channels_aligned"`
	MappedReads int `yaml:"mapped_reads"`
	PerfectTargetName string `yaml:"perfect_target_name"`
}

// EndTilesCache is the result of bounds.Find for one acquisition, as
// persisted in its metadata file. cmd/flowcell-align writes it after
// every bounds discovery but does not read it back: bounds discovery
// runs on every invocation.
type EndTilesCache struct {
	MinColumn int `yaml:"min_column"`
	MaxColumn int `yaml:"max_column"`
	LeftTiles []string `yaml:"left_tiles"`
	RightTiles []string `yaml:"right_tiles"`
}

// ReadAcquisitionMeta loads the acquisition's YAML sidecar file.
func ReadAcquisitionMeta(path string) (*AcquisitionMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ioadapter: reading acquisition metadata %s", path)
	}
	var meta AcquisitionMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "ioadapter: parsing acquisition metadata %s", path)
	}
	return &meta, nil
}

// WriteAcquisitionMeta persists meta back to path.
func WriteAcquisitionMeta(path string, meta *AcquisitionMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "ioadapter: marshaling acquisition metadata")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "ioadapter: writing acquisition metadata %s", path)
	}
	return nil
}
