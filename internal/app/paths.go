package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fallbackFileName is the prompt fallback file created inside the project
// directory when no explicit path is configured.
const fallbackFileName = "user_prompts.yaml"

// WorkDir resolves the directory a hook invocation is about.
// Order of precedence:
// 1) CLAUDE_PROJECT_DIR (exported by the hook runner)
// 2) cwd from the hook input payload
// 3) the process working directory
func WorkDir(s Settings, hookCWD string) string {
	if s.ProjectDir != "" {
		return s.ProjectDir
	}
	if hookCWD != "" {
		return hookCWD
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// FallbackPath resolves where prompt fallback records are appended.
// Order of precedence:
// 1) config: fallback.path
// 2) <work dir>/user_prompts.yaml
func FallbackPath(s Settings, workDir string) string {
	if s.Fallback.Path != "" {
		return s.Fallback.Path
	}
	if workDir == "" {
		return ""
	}
	return filepath.Join(workDir, fallbackFileName)
}

// ResolveConfigDetailed reports which config file LoadSettings would use and
// why. This is for debugging/reporting (doctor); normal code should use
// LoadSettings.
func ResolveConfigDetailed() (path string, source string, err error) {
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		if _, statErr := os.Stat(explicit); statErr != nil {
			return explicit, fmt.Sprintf("env(%s)", EnvConfigPath), statErr
		}
		return explicit, fmt.Sprintf("env(%s)", EnvConfigPath), nil
	}

	// Lookup order must match LoadSettings.
	for _, p := range configLookupPaths() {
		if _, statErr := os.Stat(p); statErr == nil {
			return p, fmt.Sprintf("lookup(%s)", p), nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return p, fmt.Sprintf("lookup(%s)", p), statErr
		}
	}
	return "", "none(env-only)", nil
}
