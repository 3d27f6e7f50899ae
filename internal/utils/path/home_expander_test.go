package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/gitfleet/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/fleet"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/workspace/fleet", expectedPath: filepath.Join(testHomeDirectoryConstant, "workspace", "fleet")},
		{name: "other_user", input: "~other/workspace", expectedPath: "~other/workspace"},
		{name: "absolute", input: "/srv/workspace", expectedPath: "/srv/workspace"},
		{name: "empty", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return testHomeDirectoryConstant, nil
			})
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderProviderFailureLeavesPath(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/workspace", expander.Expand("~/workspace"))
}

func TestHomeExpanderExpandAbsolute(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
	absolutePath, expandError := expander.ExpandAbsolute(" ~/fleet ")
	require.NoError(testInstance, expandError)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "fleet"), absolutePath)
}
