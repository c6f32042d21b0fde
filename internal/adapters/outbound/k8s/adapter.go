package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/kubernetes"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

const (
	fieldManager = "reconfigurer"

	deploymentKind = "Deployment"
)

type adapter struct {
	logger    *slog.Logger
	clientset kubernetes.Interface
	namespace string
}

// New creates the apply actuator for the given target namespace.
func New(
	logger *slog.Logger,
	clientset kubernetes.Interface,
	namespace string,
) reconfig.Applier {
	return &adapter{
		logger:    logger,
		clientset: clientset,
		namespace: namespace,
	}
}

var _ reconfig.Applier = (*adapter)(nil)

// CheckContext verifies the API server is reachable with the current
// credentials and that the target namespace exists.
func (a *adapter) CheckContext(ctx context.Context) error {
	if _, err := a.clientset.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("check api server: %w", err)
	}

	_, err := a.clientset.CoreV1().Namespaces().Get(ctx, a.namespace, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("check namespace %s: %w", a.namespace, err)
	}

	return nil
}

// Apply hands the manifest to the platform via server-side apply. Re-applying
// identical content is a no-op there.
func (a *adapter) Apply(ctx context.Context, manifest []byte) error {
	jsonBytes, err := yamlutil.ToJSON(manifest)
	if err != nil {
		return fmt.Errorf("apply: %w", &RejectedError{
			Reason: fmt.Sprintf("manifest is not valid yaml: %v", err),
		})
	}

	var deploy appsv1.Deployment
	if err := json.Unmarshal(jsonBytes, &deploy); err != nil {
		return fmt.Errorf("apply: %w", &RejectedError{
			Reason: fmt.Sprintf("manifest does not decode as a deployment: %v", err),
		})
	}

	if deploy.Kind != deploymentKind {
		return fmt.Errorf("apply: %w", &RejectedError{
			Reason: fmt.Sprintf("unsupported kind %q", deploy.Kind),
		})
	}

	if deploy.Name == "" {
		return fmt.Errorf("apply: %w", &RejectedError{
			Reason: "manifest has no metadata.name",
		})
	}

	force := true

	_, err = a.clientset.AppsV1().Deployments(a.namespace).Patch(
		ctx,
		deploy.Name,
		types.ApplyPatchType,
		jsonBytes,
		metav1.PatchOptions{
			FieldManager: fieldManager,
			Force:        &force,
		},
	)
	if err != nil {
		if apierrors.IsInvalid(err) ||
			apierrors.IsBadRequest(err) ||
			apierrors.IsForbidden(err) ||
			apierrors.IsConflict(err) {
			return fmt.Errorf("apply deployment %s: %w", deploy.Name, &RejectedError{
				Reason: err.Error(),
			})
		}

		return fmt.Errorf("apply deployment %s: %w", deploy.Name, err)
	}

	a.logger.DebugContext(ctx, "deployment applied",
		"deployment", deploy.Name,
		"namespace", a.namespace,
	)

	return nil
}
