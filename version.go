package musikr

import "runtime/debug"

// Version is the semantic version of musikr.
const Version = "0.1.0"

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	Revision  string
	GoVersion string
}

// GetVersionInfo reads the VCS revision stamped into the binary, if any.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: Version, Revision: "unknown", GoVersion: "unknown"}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.Revision = s.Value
		}
	}
	return info
}
