package types

import (
	"fmt"

	hashiversion "github.com/hashicorp/go-version"
)

// LatestProtocolVersion is the newest wire protocol this module speaks.
const LatestProtocolVersion = "2.0.0"

// legacyClusterKeyConstraint names the window of protocol versions that
// still send the legacy CLUSTER_KEY field on DUP_REQ. It is checked
// against this node's own version (SelfRequiresClusterKey): versions
// satisfying it send the field; anything newer skips it. Remove this constraint (and
// the field) once no peer below 2.0.0 is expected in a live cluster.
var legacyClusterKeyConstraint = mustConstraint("< 2.0.0")

func mustConstraint(spec string) hashiversion.Constraints {
	c, err := hashiversion.NewConstraint(spec)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in version constraint %q: %v", spec, err))
	}
	return c
}

// SelfRequiresClusterKey reports whether this node's own advertised
// protocol version still needs to set the legacy CLUSTER_KEY
// compatibility field on outbound DUP_REQ messages, so requests stay
// readable by peers running an older responder that expects it.
func SelfRequiresClusterKey(selfVersion string) bool {
	v, err := hashiversion.NewVersion(selfVersion)
	if err != nil {
		// Can't parse our own version at all; be conservative and
		// assume it's old enough to need the legacy field.
		return true
	}
	return legacyClusterKeyConstraint.Check(v)
}

// CheckCompatible returns an error if a peer's advertised protocol
// version does not parse as a version; any version that parses is
// accepted.
func CheckCompatible(peerVersion string) error {
	if _, err := hashiversion.NewVersion(peerVersion); err != nil {
		return fmt.Errorf("parsing peer protocol version %q: %w", peerVersion, err)
	}
	return nil
}
