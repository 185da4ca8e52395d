package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"order-skew/config"
)

// Preset 是可保存/恢复的简易参数。字段既可以是数字也可以是字符串，
// 字符串中的千分位逗号会被忽略。
type Preset struct {
	StartingCapital Number `json:"startingCapital"`
	NumberOfRungs   Number `json:"numberOfRungs"`
	SkewValue       Number `json:"skewValue"`
	Depth           Number `json:"depth"`
}

// Number 接受 JSON 数字或数字字符串。
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("preset number %s: %w", string(b), err)
	}
	*n = Number(v)
	return nil
}

// PresetFrom 取出计划配置中的预设字段。
func PresetFrom(c config.PlanConfig) Preset {
	return Preset{
		StartingCapital: Number(c.Capital),
		NumberOfRungs:   Number(c.Rungs),
		SkewValue:       Number(c.Skew),
		Depth:           Number(c.Depth),
	}
}

// Apply 把预设写入计划配置。StartingCapital 为 0 的预设视为空，原样返回。
func (p Preset) Apply(c config.PlanConfig) config.PlanConfig {
	if p.StartingCapital == 0 {
		return c
	}
	c.Capital = float64(p.StartingCapital)
	c.Rungs = int(p.NumberOfRungs)
	c.Skew = float64(p.SkewValue)
	c.Depth = float64(p.Depth)
	return c
}

// SavePreset 写出 JSON。
func SavePreset(w io.Writer, p Preset) error {
	return json.NewEncoder(w).Encode(p)
}

// LoadPreset 读取 JSON 预设。
func LoadPreset(r io.Reader) (Preset, error) {
	var p Preset
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return p, fmt.Errorf("invalid preset: %w", err)
	}
	return p, nil
}
