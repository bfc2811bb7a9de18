/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package style

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, ValidateDescriptor(Defaults()))
}

func TestInnerPaddingPrecedence(t *testing.T) {
	d := Defaults()
	assert.Equal(t, Padding{24, 24, 24, 24}, d.Inner())
	d.CardPadding = &Padding{Top: 1, Right: 2, Bottom: 3, Left: 4}
	assert.Equal(t, Padding{1, 2, 3, 4}, d.Inner())
}

func TestHasFooter(t *testing.T) {
	d := Defaults()
	assert.False(t, d.HasFooter())
	d.Watermark.Enabled = true
	assert.True(t, d.HasFooter())
	d.Watermark.Enabled = false
	d.PageNumber.Enabled = true
	assert.True(t, d.HasFooter())
}

func TestShadowCSSIsDerivedOnRead(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "0px 8px 24px rgba(0,0,0,0.15)", d.ShadowCSS())
	d.Shadow.Blur = 12.5
	d.Shadow.Color = "#000"
	assert.Equal(t, "0px 8px 12.5px #000", d.ShadowCSS())
	d.Shadow.Enabled = false
	assert.Equal(t, "none", d.ShadowCSS())
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.yaml")
	body := "fontSize: 18\naspectRatio: \"1:1\"\ncardPadding:\n  top: 10\n  right: 12\n  bottom: 10\n  left: 12\npageNumber:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 18.0, d.FontSize)
	assert.Equal(t, Ratio1x1, d.AspectRatio)
	assert.Equal(t, Portrait, d.Orientation)
	assert.Equal(t, 20.0, d.Padding)
	require.NotNil(t, d.CardPadding)
	assert.Equal(t, 12.0, d.CardPadding.Left)
	assert.True(t, d.PageNumber.Enabled)
}

func TestLoadJSONRejectsSchemaViolations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fontSize": -3, "aspectRatio": "5:4"}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.GreaterOrEqual(t, len(ve.Problems), 2)
}

func TestValidateRequiresFields(t *testing.T) {
	err := Validate([]byte(`{"fontSize": 16}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Problems)
	assert.Contains(t, err.Error(), "invalid style")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := Defaults()
	d.AutoHeight = true
	d.Watermark = Watermark{Enabled: true, Text: "@me"}
	for _, name := range []string{"s.json", "s.yml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, d))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, d, got, name)
	}
}

func TestDecodeUnknownExtension(t *testing.T) {
	d := Defaults()
	assert.Error(t, Decode([]byte("x"), ".toml", &d))
	assert.Error(t, Decode([]byte("{}"), ".json", nil))
}
