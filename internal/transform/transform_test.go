package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/eval"
	"github.com/vdakb/docker-sub018/internal/secret"
)

func parseDescriptor(t *testing.T, doc string) *descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return d
}

func TestBuildMapsDeclaredAttributes(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="email" source="mail"/>
	  <attribute name="quota" source="mailQuota" type="long"/>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"mail": "a@b.com", "mailQuota": "512"}, false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "email", out[0].Name)
	assert.Equal(t, []any{"a@b.com"}, out[0].Values)
	assert.Equal(t, "quota", out[1].Name)
	assert.Equal(t, []any{int64(512)}, out[1].Values)
}

func TestBuildSkipsIdentifierAndIgnored(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="uid" source="id"/>
	  <attribute name="email" source="mail"/>
	  <attribute name="legacy" source="old">
	    <flag>ignore</flag>
	  </attribute>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"id": "42", "mail": "a@b.com", "old": "x"}, false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "email", out[0].Name)
}

func TestBuildEmbeddedKeepsIdentifier(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="uid" source="id"/>
	  <attribute name="email" source="mail"/>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.BuildEmbedded(d, map[string]any{"id": "42", "mail": "a@b.com"}, false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "uid", out[0].Name)
}

func TestBuildStrictEmitsAbsent(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="email" source="mail"/>
	  <attribute name="room" source="roomNumber"/>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"mail": "a@b.com"}, false)
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = b.Build(d, map[string]any{"mail": "a@b.com"}, true)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "room", out[1].Name)
	assert.Equal(t, []any{nil}, out[1].Values)
}

func TestBuildWrapsSensitive(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name" password="password">
	  <attribute name="password" source="pwd"/>
	  <attribute name="pin" source="pin">
	    <flag>sensitive</flag>
	  </attribute>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"pwd": "hush", "pin": nil}, false)
	require.NoError(t, err)
	require.Len(t, out, 2)

	s, ok := out[0].Values[0].(*secret.Secret)
	require.True(t, ok)
	assert.True(t, s.Equal(secret.FromString("hush")))

	// a null sensitive value is the empty secret, never absence
	empty, ok := out[1].Values[0].(*secret.Secret)
	require.True(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func TestBuildTemplatesSeeMappedValues(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="givenName" source="first"/>
	  <attribute name="surname" source="last"/>
	  <template name="displayName" source='surname + ", " + givenName'/>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"first": "Ada", "last": "Lovelace"}, false)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "displayName", out[2].Name)
	assert.Equal(t, []any{"Lovelace, Ada"}, out[2].Values)
}

func TestBuildAppliesRules(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name" transformation="true">
	  <attribute name="email" source="mail" transformer="lowercase"/>
	</descriptor>`)
	rules := NewRuleset()
	rules.Register("lowercase", func(value any, record map[string]any) any {
		return strings.ToLower(value.(string))
	})
	b := NewBuilder(eval.NewEngine(), rules)

	out, err := b.Build(d, map[string]any{"mail": "A@B.COM"}, false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []any{"a@b.com"}, out[0].Values)
}

func TestBuildRulesDisabledWithoutTransformation(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="email" source="mail" transformer="lowercase"/>
	</descriptor>`)
	rules := NewRuleset()
	rules.Register("lowercase", func(value any, record map[string]any) any {
		return strings.ToLower(value.(string))
	})
	b := NewBuilder(eval.NewEngine(), rules)

	out, err := b.Build(d, map[string]any{"mail": "A@B.COM"}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"A@B.COM"}, out[0].Values)
}

func TestBuildStripsEntitlementPrefix(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="role" source="roleName">
	    <flag>entitlement</flag>
	  </attribute>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"roleName": "7~admins"}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"admins"}, out[0].Values)
}

func TestBuildMultiValuedSource(t *testing.T) {
	d := parseDescriptor(t, `<descriptor identifier="uid" uniqueName="name">
	  <attribute name="proxy" source="proxyAddresses"/>
	</descriptor>`)
	b := NewBuilder(eval.NewEngine(), nil)

	out, err := b.Build(d, map[string]any{"proxyAddresses": []string{"a@b.com", "c@d.com"}}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"a@b.com", "c@d.com"}, out[0].Values)
}
