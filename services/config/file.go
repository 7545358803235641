//go:build !(rp2040 || rp2350)

package config

import (
	"encoding/hex"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"sensornode-go/errcode"
	"sensornode-go/types"
)

// secrets carries the byte-array credentials, written as hex in YAML.
type secrets struct {
	Network struct {
		ExtendedPANID string `yaml:"extended_pan_id"`
		NetworkKey    string `yaml:"network_key"`
	} `yaml:"network"`
}

// Load reads a YAML document and overlays it on an embedded profile. The
// profile is chosen by the document's `profile` key (default: sensor2).
// Keys absent from the document keep the profile's values.
func Load(r io.Reader) (types.NodeConfig, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil && err != io.EOF {
		return types.NodeConfig{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}

	var head struct {
		Profile string `yaml:"profile"`
	}
	if root.Kind != 0 {
		if err := root.Decode(&head); err != nil {
			return types.NodeConfig{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
		}
	}
	if head.Profile == "" {
		head.Profile = DefaultDevice
	}
	cfg, ok := EmbeddedConfigLookup(head.Profile)
	if !ok {
		return types.NodeConfig{}, errcode.New(errcode.InvalidConfig, "config.load", "unknown profile: "+head.Profile)
	}
	if root.Kind == 0 {
		return cfg, Validate(cfg)
	}

	if err := root.Decode(&cfg); err != nil {
		return types.NodeConfig{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	var sec secrets
	if err := root.Decode(&sec); err != nil {
		return types.NodeConfig{}, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	if sec.Network.ExtendedPANID != "" {
		if err := decodeHex(sec.Network.ExtendedPANID, cfg.Network.ExtendedPANID[:]); err != nil {
			return types.NodeConfig{}, err
		}
	}
	if sec.Network.NetworkKey != "" {
		if err := decodeHex(sec.Network.NetworkKey, cfg.Network.NetworkKey[:]); err != nil {
			return types.NodeConfig{}, err
		}
	}
	return cfg, Validate(cfg)
}

// LoadFile is Load on a file path.
func LoadFile(path string) (types.NodeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.NodeConfig{}, errcode.Wrap(errcode.InvalidConfig, "config.open", err)
	}
	defer f.Close()
	return Load(f)
}

// Marshal renders cfg as YAML, credentials included as hex.
func Marshal(cfg types.NodeConfig) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "network" {
			continue
		}
		net := doc.Content[i+1]
		net.Content = append(net.Content,
			scalar("extended_pan_id"), scalar(hex.EncodeToString(cfg.Network.ExtendedPANID[:])),
			scalar("network_key"), scalar(hex.EncodeToString(cfg.Network.NetworkKey[:])),
		)
	}
	return yaml.Marshal(&doc)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func decodeHex(s string, dst []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config.hex", err)
	}
	if len(b) != len(dst) {
		return errcode.New(errcode.InvalidConfig, "config.hex", "want "+itoa(len(dst))+" bytes, got "+itoa(len(b)))
	}
	copy(dst, b)
	return nil
}
