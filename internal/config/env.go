package config

// Scalar settings can be overridden through RECONF_* env vars:
// RECONF_NAMESPACE, RECONF_BACKUPDIR, RECONF_LOG_LEVEL, RECONF_LOG_FORMAT,
// RECONF_HTTP_PORT, RECONF_KUBECONFIG, RECONF_KUBEMASTER.
const envPrefix = "RECONF"

// Config file looked up in the working directory when no --config is given.
const defaultConfigName = "reconfigurer"

// Standard k8s env keys used as fallback when RECONF_* are unset.
const (
	envKeyKubeConfigFallback = "KUBECONFIG"
	envKeyKubeMasterFallback = "KUBERNETES_MASTER"
)
