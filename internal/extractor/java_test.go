package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func TestJava_ClassMembers(t *testing.T) {
	source := `package com.example;

import java.util.List;

/** Greets people. */
public class Greeter {
    private static final String PREFIX = "Hello";

    /** Returns a greeting for the given name. */
    public String greet(String name) {
        return PREFIX + ", " + name;
    }
}
`
	entities := extractSource(t, "Greeter.java", source)

	require.Len(t, entities, 4)

	imp := entities[0]
	assert.Equal(t, types.KindImport, imp.Kind)
	assert.Equal(t, "import java.util.List;", imp.Name)

	greeter := entities[1]
	assert.Equal(t, "Greeter", greeter.Name)
	assert.Equal(t, types.KindClass, greeter.Kind)
	require.NotNil(t, greeter.Docstring)
	assert.Contains(t, *greeter.Docstring, "Greets people")
	require.NotNil(t, greeter.Context.Module)
	assert.Equal(t, "com.example", *greeter.Context.Module)

	prefix := entities[2]
	assert.Equal(t, "PREFIX", prefix.Name)
	assert.Equal(t, types.KindConstant, prefix.Kind)
	require.NotNil(t, prefix.Context.StructName)
	assert.Equal(t, "Greeter", *prefix.Context.StructName)

	greet := entities[3]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, types.KindMethod, greet.Kind)
	require.NotNil(t, greet.Docstring)
	assert.NotContains(t, greet.Signature, "return")
}

func TestJava_InterfaceAndMutableField(t *testing.T) {
	source := `public interface Runner {
    void run();
}

class Holder {
    private int value;
}
`
	entities := extractSource(t, "Runner.java", source)

	require.Len(t, entities, 3)
	assert.Equal(t, "Runner", entities[0].Name)
	assert.Equal(t, types.KindInterface, entities[0].Kind)
	assert.Equal(t, "Holder", entities[1].Name)
	assert.Equal(t, types.KindClass, entities[1].Kind)
	assert.Equal(t, "value", entities[2].Name)
	assert.Equal(t, types.KindVariable, entities[2].Kind)
	assert.Nil(t, entities[0].Context.Module)
}
