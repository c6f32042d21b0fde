package reconfig_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode reconfig.Mode
		want []reconfig.FieldGroup
	}{
		{
			name: "warning touches limits only",
			mode: reconfig.ModeWarning,
			want: []reconfig.FieldGroup{reconfig.FieldGroupLimits},
		},
		{
			name: "unhealthy touches requests and limits",
			mode: reconfig.ModeUnhealthy,
			want: []reconfig.FieldGroup{reconfig.FieldGroupRequests, reconfig.FieldGroupLimits},
		},
		{
			name: "normal touches replicas only",
			mode: reconfig.ModeNormal,
			want: []reconfig.FieldGroup{reconfig.FieldGroupReplicas},
		},
		{
			name: "empty mode behaves like normal",
			mode: "",
			want: []reconfig.FieldGroup{reconfig.FieldGroupReplicas},
		},
		{
			name: "unrecognized mode behaves like normal",
			mode: "degraded",
			want: []reconfig.FieldGroup{reconfig.FieldGroupReplicas},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, reconfig.Resolve(tt.mode))
		})
	}
}
