package cli

// Command descriptions
const (
	MsgRootShort = "Reconcile the filesystem with a manifest"
	MsgRootLong  = `fsmanifest applies a declarative manifest of files, symlinks and directories
to the filesystem. It remembers the last manifest it applied (the baseline) and
removes what a new manifest no longer asks for, so repeated activations converge
on exactly the declared state.`

	MsgActivateShort = "Apply a manifest against the stored baseline"
	MsgActivateLong  = `Activate reads the manifest, computes the difference against the last
successfully applied manifest and executes it. Targets the old manifest created
and the new one drops are removed first. Existing files are only replaced when
the entry (or the manifest's clobber_by_default) allows it.

The baseline is updated only when every operation succeeds.`
	MsgActivateExample = `  # Apply a manifest
  fsmanifest activate ./home.json

  # Show what would change without touching anything
  fsmanifest activate --dry-run ./home.json`

	MsgDeactivateShort = "Remove what a manifest created"
	MsgDeactivateLong  = `Deactivate removes the copies, symlinks and directories a manifest created,
deepest first. Targets that no longer match the manifest, non-empty directories
and entries with "deactivate": false are left in place. The stored baseline is
cleared when it is the deactivated manifest.`

	MsgDiffShort = "Apply a manifest using another manifest as the baseline"
	MsgDiffLong  = `Diff activates <manifest> treating <old-manifest> as what was previously
applied, instead of the stored baseline. The stored baseline is replaced with
<manifest> on success.`
	MsgDiffExample = `  fsmanifest diff ./home.json ./home.previous.json`

	MsgPlanShort = "Show the operations activate would perform"
	MsgPlanLong  = `Plan computes the operations for <manifest> against the stored baseline and
predicts their outcome without changing the filesystem or the baseline.`
	MsgPlanExample = `  fsmanifest plan ./home.json
  fsmanifest plan --output json ./home.json`

	MsgConfigShort  = "Print the effective configuration"
	MsgVersionShort  = "Print version information"
	MsgVersionLong   = "Print detailed version information including commit hash and build date"
)

// Version output
const (
	MsgVersionFormat = "fsmanifest version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Preview changes without executing them"
	MsgFlagBaseline = "Baseline file to read and update (overrides state.baseline)"
	MsgFlagOutput   = "Output format: text, json or yaml (default from activation.default_output)"
)

// Error messages
const (
	MsgErrorFormat    = "Error: %v\n"
	MsgErrNoCommand   = "no command specified"
	MsgErrInvalidFlag = "invalid --%s value"
)
