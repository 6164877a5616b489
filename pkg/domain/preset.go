package domain

import "strings"

// Preset は編集指示のプリセットです。選択するとプロンプト欄にそのまま入るだけで、別の処理経路は持ちません。
type Preset struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

// presets は表示順に並べた固定カタログです。
var presets = []Preset{
	{Key: "remove-bg", Label: "Remove BG", Instruction: "Remove the background from the image perfectly, leaving only the main subject. Keep high details."},
	{Key: "blue-screen", Label: "Blue Screen", Instruction: "Replace the entire background behind the main subject with a solid pure blue color (chroma key blue)."},
	{Key: "green-screen", Label: "Green Screen", Instruction: "Replace the entire background behind the main subject with a solid pure green color (chroma key green)."},
	{Key: "retro", Label: "Retro", Instruction: "Apply a vintage 1980s retro filter to the image with grain and color shift."},
	{Key: "cyberpunk", Label: "Cyberpunk", Instruction: "Restyle the image as a cyberpunk scene with neon lighting, rain-soaked reflections and a teal and magenta palette."},
	{Key: "sketch", Label: "Sketch", Instruction: "Convert this image into a detailed pencil sketch."},
	{Key: "watercolor", Label: "Watercolor", Instruction: "Convert this image into a soft, artistic watercolor painting."},
	{Key: "pixel-art", Label: "Pixel Art", Instruction: "Transform this image into 8-bit pixel art style."},
	{Key: "claymation", Label: "Claymation", Instruction: "Make the image look like a claymation stop-motion animation."},
	{Key: "noir", Label: "Noir", Instruction: "Turn the image into a black and white film noir still with hard shadows and high contrast."},
	{Key: "fantasy", Label: "Fantasy", Instruction: "Reimagine the image as a high fantasy illustration with magical lighting and an epic, painterly atmosphere."},
	{Key: "expand", Label: "Expand", Instruction: "Keep the original subject and composition but expand the field of view to fill the entire image. Generate new, matching surroundings to fit the new aspect ratio seamlessly."},
	{Key: "enhance", Label: "Enhance", Instruction: "Significantly improve the image resolution, detail, and sharpness. Remove noise and blur while keeping the original composition and colors natural."},
	{Key: "ghibli", Label: "Ghibli", Instruction: "Transform this image into the style of a Studio Ghibli anime movie, with lush backgrounds, vibrant natural colors, and characteristic character designs."},
	{Key: "pokemon", Label: "Pokemon", Instruction: "Transform the subject into a Pokemon anime style character or scene, with bold outlines, cel shading, and bright primary colors."},
}

// Presets はカタログのコピーを返します。
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset はキーまたはラベル（大文字小文字を区別しない）でプリセットを引きます。
func LookupPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range presets {
		if strings.EqualFold(p.Key, name) || strings.EqualFold(p.Label, name) {
			return p, true
		}
	}
	return Preset{}, false
}
