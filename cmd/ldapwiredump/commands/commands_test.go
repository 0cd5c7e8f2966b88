package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with the given args against a fresh
// output buffer, the way a caller would invoke the built binary.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestEncodeAbandonProducesHex(t *testing.T) {
	out := runCLI(t, "encode", "abandon", "7")
	require.Contains(t, out, "50")
}

func TestDecodeRoundTripsEncodedAbandon(t *testing.T) {
	wire := runCLI(t, "encode", "abandon", "9")
	wire = wire[:len(wire)-1] // strip trailing newline

	out := runCLI(t, "decode", wire)
	require.Contains(t, out, "operation: AbandonRequest")
	require.Contains(t, out, "abandoned messageID: 9")
}

func TestDNParseRoundTrips(t *testing.T) {
	out := runCLI(t, "dn", "parse", "cn=Alice,dc=example,dc=com")
	require.Contains(t, out, "rdns:  3")
	require.Contains(t, out, "cn=Alice,dc=example,dc=com")
}

func TestFilterParseRoundTrips(t *testing.T) {
	out := runCLI(t, "filter", "parse", "(&(objectClass=person)(uid=alice))")
	require.Contains(t, out, "(&(objectClass=person)(uid=alice))")
	require.Contains(t, out, "ber:")
}
