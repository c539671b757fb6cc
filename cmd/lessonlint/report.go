package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/itchyny/json2yaml"
	"github.com/tidwall/sjson"
)

func writeYAMLReport(path string, result LintResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	data, err = sjson.SetBytes(data, "generatedAt", time.Now().Format(time.RFC3339))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json2yaml.Convert(&buf, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to render YAML report: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
