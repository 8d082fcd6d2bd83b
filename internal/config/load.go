package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"
)

// File is the YAML statement file layout.
type File struct {
	Namespace  string         `yaml:"namespace"`
	Statements []StatementDef `yaml:"statements"`
}

// Load reads statements from path into r.
// A directory is loaded as a CUE package when it contains .cue files,
// and every .yaml/.yml file in it is loaded as well.
func Load(r *Registry, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			return LoadYAML(r, path)
		case ".cue":
			return LoadCUE(r, filepath.Dir(path))
		default:
			return fmt.Errorf("unsupported statement file: %s", path)
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", path, err)
	}
	var yamlFiles []string
	hasCUE := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".cue":
			hasCUE = true
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, filepath.Join(path, e.Name()))
		}
	}
	if !hasCUE && len(yamlFiles) == 0 {
		return fmt.Errorf("no statement files found in %s", path)
	}

	if hasCUE {
		if err := LoadCUE(r, path); err != nil {
			return err
		}
	}
	sort.Strings(yamlFiles)
	for _, f := range yamlFiles {
		if err := LoadYAML(r, f); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAML reads one YAML statement file.
func LoadYAML(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return ParseYAML(r, data, path)
}

// ParseYAML registers the statements in data. source is used in errors.
func ParseYAML(r *Registry, data []byte, source string) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}
	for i, def := range f.Statements {
		if def.ID == "" {
			return fmt.Errorf("%s: statements[%d]: id is required", source, i)
		}
		def.Namespace = f.Namespace
		if err := r.Add(def); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

// LoadCUE loads the CUE package in dir and registers every statement
// under its top-level mappers field.
func LoadCUE(r *Registry, dir string) error {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return fmt.Errorf("building CUE value: %w", err)
	}
	return parseCUE(r, value)
}

// ParseCUE compiles src and registers its statements.
func ParseCUE(r *Registry, src []byte, source string) error {
	value := cuecontext.New().CompileBytes(src, cue.Filename(source))
	if err := value.Err(); err != nil {
		return fmt.Errorf("compiling %s: %w", source, err)
	}
	return parseCUE(r, value)
}

func parseCUE(r *Registry, value cue.Value) error {
	mappers := value.LookupPath(cue.ParsePath("mappers"))
	if !mappers.Exists() {
		return fmt.Errorf("no mappers field found")
	}

	nsIter, err := mappers.Fields()
	if err != nil {
		return fmt.Errorf("iterating mappers: %w", err)
	}
	for nsIter.Next() {
		namespace := nsIter.Selector().Unquoted()
		stmtIter, err := nsIter.Value().Fields()
		if err != nil {
			return fmt.Errorf("mappers.%s: %w", namespace, err)
		}
		for stmtIter.Next() {
			def, err := cueStatement(namespace, stmtIter.Selector().Unquoted(), stmtIter.Value())
			if err != nil {
				return err
			}
			if err := r.Add(def); err != nil {
				return err
			}
		}
	}
	return nil
}

func cueStatement(namespace, id string, v cue.Value) (StatementDef, error) {
	def := StatementDef{Namespace: namespace, ID: id}
	fields := []struct {
		name string
		dst  *string
	}{
		{"kind", &def.Kind},
		{"resultType", &def.ResultType},
		{"sql", &def.SQL},
	}
	for _, f := range fields {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return def, fmt.Errorf("%s.%s: %s: %w", namespace, id, f.name, err)
		}
		*f.dst = s
	}
	return def, nil
}
