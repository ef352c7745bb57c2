package dependency

import (
	"path"
	"regexp"
	"strings"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// RepositoryDir is the directory inside the Java directory holding the layout.
const RepositoryDir = "repo"

const snapshotVersion = "SNAPSHOT"

// handler maps a dependency type to its file extension and implied classifier.
type handler struct {
	extension  string
	classifier string
}

//nolint:gochecknoglobals // Read-only lookup table.
var handlers = map[string]handler{
	"jar":          {extension: "jar"},
	"pom":          {extension: "pom"},
	"test-jar":     {extension: "jar", classifier: "tests"},
	"maven-plugin": {extension: "jar"},
	"ejb":          {extension: "jar"},
	"ejb-client":   {extension: "jar", classifier: "client"},
	"java-source":  {extension: "jar", classifier: "sources"},
	"javadoc":      {extension: "jar", classifier: "javadoc"},
	"bundle":       {extension: "jar"},
	"war":          {extension: "war"},
	"ear":          {extension: "ear"},
	"rar":          {extension: "rar"},
}

// timestampedSnapshot matches unique snapshot versions like 1.0-20240101.120000-3.
var timestampedSnapshot = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)

// PathOf returns the repository layout path of c, using forward slashes.
func PathOf(c bundle.Coordinate) string {
	kind := c.Kind()

	h, ok := handlers[kind]
	if !ok {
		h = handler{extension: kind}
	}

	extension := c.Extension
	if extension == "" {
		extension = h.extension
	}

	classifier := c.Classifier
	if classifier == "" {
		classifier = h.classifier
	}

	var builder strings.Builder

	if c.GroupID != "" {
		builder.WriteString(strings.ReplaceAll(c.GroupID, ".", "/"))
		builder.WriteByte('/')
	}

	builder.WriteString(c.ArtifactID)
	builder.WriteByte('/')
	builder.WriteString(BaseVersion(c))
	builder.WriteByte('/')
	builder.WriteString(c.ArtifactID)
	builder.WriteByte('-')
	builder.WriteString(c.Version)

	if classifier != "" {
		builder.WriteByte('-')
		builder.WriteString(classifier)
	}

	if extension != "" {
		builder.WriteByte('.')
		builder.WriteString(extension)
	}

	return builder.String()
}

// BaseVersion returns the directory version of c. Timestamped snapshots
// collapse to "<version>-SNAPSHOT".
func BaseVersion(c bundle.Coordinate) string {
	if c.BaseVersion != "" {
		return c.BaseVersion
	}

	if m := timestampedSnapshot.FindStringSubmatch(c.Version); m != nil {
		return m[1] + "-" + snapshotVersion
	}

	return c.Version
}

// RelativePath returns the path recorded in the manifest, e.g. "repo/org/x/...".
func RelativePath(c bundle.Coordinate) string {
	return path.Join(RepositoryDir, PathOf(c))
}
