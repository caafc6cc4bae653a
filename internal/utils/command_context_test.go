package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/utils"
)

func TestCommandContextAccessorRoundTripsValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, flagsAvailable := accessor.ExecutionFlags(context.Background())
	require.False(testInstance, flagsAvailable)

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/coursesync/config.yaml")
	executionContext = accessor.WithExecutionFlags(executionContext, utils.ExecutionFlags{DryRun: true})

	configurationFilePath, pathAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/etc/coursesync/config.yaml", configurationFilePath)

	executionFlags, flagsAvailable := accessor.ExecutionFlags(executionContext)
	require.True(testInstance, flagsAvailable)
	require.True(testInstance, executionFlags.DryRun)
	require.False(testInstance, executionFlags.RequireClean)
}
