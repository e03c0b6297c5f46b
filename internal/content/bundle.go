package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bundle/*.yaml
var bundleFS embed.FS

// Bundle 是编译期内置的双语静态内容，既是最终兜底，也是数据库的种子数据。
type Bundle struct {
	views map[Language]*View
}

var defaultBundle = sync.OnceValues(func() (*Bundle, error) {
	return LoadBundle(bundleFS)
})

// DefaultBundle 返回内置静态内容；内置数据损坏属于构建错误，直接 panic。
func DefaultBundle() *Bundle {
	b, err := defaultBundle()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadBundle 从 fsys 中读取 bundle/<lang>.yaml。
func LoadBundle(fsys interface{ ReadFile(string) ([]byte, error) }) (*Bundle, error) {
	b := &Bundle{views: make(map[Language]*View, len(Languages))}
	for _, lang := range Languages {
		data, err := fsys.ReadFile(fmt.Sprintf("bundle/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", lang, err)
		}
		view, err := decodeBundleView(data)
		if err != nil {
			return nil, fmt.Errorf("decode bundle %s: %w", lang, err)
		}
		view.Language = lang
		normalizeOrders(view)
		b.views[lang] = view
	}
	return b, nil
}

// View 返回 lang 对应静态内容的深拷贝；未知语言回落到默认语言。
func (b *Bundle) View(lang Language) *View {
	view, ok := b.views[lang]
	if !ok {
		view = b.views[DefaultLanguage]
	}
	return view.Clone()
}

// YAML 只负责承载数据，字段名以 json tag 为准，避免维护两套 tag。
func decodeBundleView(data []byte) (*View, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	bridged, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var view View
	if err := json.Unmarshal(bridged, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func normalizeOrders(v *View) {
	for _, c := range EntryCategories {
		entries := v.Entries(c)
		for i, e := range entries {
			e.Base().DisplayOrder = i
		}
		v.SetEntries(c, entries)
	}
}
