package source_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/beans"
	"github.com/km-arc/go-beans/framework/source"
)

func TestLoad_FullDescriptor(t *testing.T) {
	descriptor := `
beans:
  - name: repo
    class: app.SQLRepo
    primary: true
    qualifiers:
      - type: sql
        attrs:
          value: main
  - name: service
    class: app.Service
    scope: prototype
    lazy: true
    autowire: by-type
    role: infrastructure
    depends-on: [repo]
    init-method: Start
    destroy-method: Stop
    aliases: [svc, app]
    constructor:
      - index: 0
        value: "hello"
      - name: repo
    properties:
      retries: 3
      backend:
        ref: repo
`
	defs, err := source.New().Load(descriptor)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	repo := defs[0]
	assert.Equal(t, "repo", repo.Name)
	assert.True(t, repo.Definition.Primary)
	require.Len(t, repo.Definition.Qualifiers, 1)
	assert.Equal(t, "sql", repo.Definition.Qualifiers[0].Type)
	assert.Equal(t, "main", repo.Definition.Qualifiers[0].Value())

	svc := defs[1]
	assert.Equal(t, "service", svc.Name)
	assert.Equal(t, []string{"svc", "app"}, svc.Aliases)

	def := svc.Definition
	assert.Equal(t, "app.Service", def.ClassName)
	assert.Equal(t, beans.ScopePrototype, def.ScopeOrDefault())
	assert.True(t, def.LazyInit)
	assert.Equal(t, beans.AutowireByType, def.Autowire)
	assert.Equal(t, beans.RoleInfrastructure, def.Role)
	assert.Equal(t, []string{"repo"}, def.DependsOn)
	assert.Equal(t, "Start", def.InitMethod)
	assert.Equal(t, "Stop", def.DestroyMethod)

	require.Len(t, def.ConstructorArgs, 2)
	assert.Equal(t, 0, def.ConstructorArgs[0].Index)
	assert.Equal(t, beans.Literal{Raw: "hello"}, def.ConstructorArgs[0].Value)
	assert.Equal(t, -1, def.ConstructorArgs[1].Index)
	assert.Equal(t, "repo", def.ConstructorArgs[1].Name)
	assert.Nil(t, def.ConstructorArgs[1].Value, "name-only args resolve as references")

	retries, ok := def.PropertyNamed("retries")
	require.True(t, ok)
	assert.Equal(t, beans.Literal{Raw: 3}, retries)
	backend, ok := def.PropertyNamed("backend")
	require.True(t, ok)
	assert.Equal(t, beans.Ref{Name: "repo"}, backend)
}

func TestLoad_NestedBeanAndList(t *testing.T) {
	descriptor := `
beans:
  - name: fan
    class: app.Fan
    properties:
      backend:
        bean:
          class: app.MemRepo
          properties:
            size: 10
      labels:
        list:
          - "a"
          - ref: repo
`
	defs, err := source.New().Load(descriptor)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0].Definition

	backend, ok := def.PropertyNamed("backend")
	require.True(t, ok)
	inner, ok := backend.(beans.Inner)
	require.True(t, ok, "bean: mapping should produce a nested definition")
	assert.Equal(t, "app.MemRepo", inner.Def.ClassName)
	size, ok := inner.Def.PropertyNamed("size")
	require.True(t, ok)
	assert.Equal(t, beans.Literal{Raw: 10}, size)

	labels, ok := def.PropertyNamed("labels")
	require.True(t, ok)
	list, ok := labels.(beans.List)
	require.True(t, ok)
	require.Len(t, list.Elems, 2)
	assert.Equal(t, beans.Literal{Raw: "a"}, list.Elems[0])
	assert.Equal(t, beans.Ref{Name: "repo"}, list.Elems[1])
}

func TestLoad_ParentOnlyEntryIsValid(t *testing.T) {
	descriptor := `
beans:
  - name: child
    parent: base
`
	defs, err := source.New().Load(descriptor)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "base", defs[0].Definition.Parent)
	assert.Empty(t, defs[0].Definition.ClassName)
}

func TestLoad_Readers(t *testing.T) {
	descriptor := "beans:\n  - name: w\n    class: app.Widget\n"

	for _, input := range []any{
		descriptor,
		[]byte(descriptor),
		strings.NewReader(descriptor),
	} {
		defs, err := source.New().Load(input)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "app.Widget", defs[0].Definition.ClassName)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		descriptor any
	}{
		{"malformed yaml", "beans: ["},
		{"missing class", "beans:\n  - name: w\n"},
		{"bad autowire mode", "beans:\n  - class: app.W\n    autowire: sideways\n"},
		{"bad role", "beans:\n  - class: app.W\n    role: boss\n"},
		{"unsupported descriptor type", 42},
		{"invalid nested bean", `
beans:
  - name: w
    class: app.W
    properties:
      p:
        bean:
          scope: prototype
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.New().Load(tt.descriptor)
			assert.Error(t, err)
		})
	}
}
