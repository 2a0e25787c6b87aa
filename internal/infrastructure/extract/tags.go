package extract

import (
	"path"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
)

// tagRule pairs a predicate with the OperationTag it assigns. The table is
// data-driven so new detection patterns are additions, not new branches.
type tagRule struct {
	name  string
	tag   domain.OperationTag
	match func(seg rawSeg) bool
}

func defaultTagRules() []tagRule {
	return []tagRule{
		{
			name: "delete-command",
			tag:  domain.TagFileDelete,
			match: func(seg rawSeg) bool {
				name := baseName(seg.name)
				if deleteCmds[name] {
					return true
				}
				return name == "find" && seg.hasLongFlag("-delete")
			},
		},
		{
			name: "write-command",
			tag:  domain.TagFileWrite,
			match: func(seg rawSeg) bool {
				if len(seg.redirOut) > 0 {
					return true
				}
				name := baseName(seg.name)
				if writeCmds[name] {
					return true
				}
				return name == "sed" && (seg.hasShortFlag('i') || seg.hasLongFlag("--in-place"))
			},
		},
		{
			name: "permission-change",
			tag:  domain.TagPermissionChange,
			match: func(seg rawSeg) bool {
				return permissionCmds[baseName(seg.name)]
			},
		},
		{
			name: "network-fetch",
			tag:  domain.TagNetworkFetch,
			match: func(seg rawSeg) bool {
				return fetchCmds[baseName(seg.name)]
			},
		},
		{
			name: "network-exec",
			tag:  domain.TagNetworkExec,
			match: func(seg rawSeg) bool {
				return remoteExecCmds[baseName(seg.name)]
			},
		},
		{
			name: "privilege-escalation",
			tag:  domain.TagPrivilegeEscalation,
			match: func(seg rawSeg) bool {
				return seg.escalated
			},
		},
		{
			name: "disk-format",
			tag:  domain.TagDiskFormat,
			match: func(seg rawSeg) bool {
				name := baseName(seg.name)
				if formatCmds[name] || strings.HasPrefix(name, "mkfs") {
					return true
				}
				if name == "dd" {
					for _, arg := range seg.args {
						if strings.HasPrefix(arg, "of=/dev/") {
							return true
						}
					}
				}
				for _, target := range seg.redirOut {
					if strings.HasPrefix(target, "/dev/sd") || strings.HasPrefix(target, "/dev/nvme") {
						return true
					}
				}
				return false
			},
		},
		{
			name: "package-install",
			tag:  domain.TagPackageInstall,
			match: func(seg rawSeg) bool {
				name := baseName(seg.name)
				if !packageCmds[name] {
					return false
				}
				for _, arg := range seg.args {
					switch arg {
					case "install", "add", "upgrade", "update", "-S", "-Sy", "-Syu", "-i", "-U":
						return true
					}
				}
				return false
			},
		},
		{
			name: "git-destructive",
			tag:  domain.TagGitDestructive,
			match: func(seg rawSeg) bool {
				if baseName(seg.name) != "git" {
					return false
				}
				sub := firstNonFlag(seg.args)
				switch sub {
				case "push":
					return seg.hasShortFlag('f') || seg.hasLongFlag("--force") || seg.hasLongFlag("--force-with-lease")
				case "reset":
					return seg.hasLongFlag("--hard")
				case "clean":
					return seg.hasShortFlag('f') || seg.hasLongFlag("--force")
				case "branch":
					return seg.hasShortFlag('D')
				case "filter-branch":
					return true
				}
				return false
			},
		},
	}
}

// Command vocabularies for tagging. Non-exclusive: a command may appear in
// more than one set.
var (
	deleteCmds = set("rm", "rmdir", "shred", "unlink")

	writeCmds = set("tee", "touch", "mv", "cp", "truncate", "install", "ln", "dd", "rsync")

	permissionCmds = set("chmod", "chown", "chgrp", "chattr", "setfacl")

	fetchCmds = set("curl", "wget", "fetch", "aria2c")

	remoteExecCmds = set("ssh", "nc", "ncat", "netcat", "socat", "telnet")

	escalationCmds = set("sudo", "doas", "su", "pkexec")

	// transparentWrappers run their trailing argv unchanged, so folding
	// through them exposes the effective command.
	transparentWrappers = set("env", "nice", "nohup", "timeout", "stdbuf", "ionice", "setsid")

	formatCmds = set("mkfs", "fdisk", "parted", "wipefs", "mkswap", "sfdisk")

	packageCmds = set("apt", "apt-get", "yum", "dnf", "pacman", "zypper", "apk",
		"brew", "pip", "pip3", "npm", "pnpm", "yarn", "gem", "cargo", "snap", "flatpak")

	interpreterCmds = set("sh", "bash", "zsh", "dash", "ksh", "fish",
		"python", "python3", "perl", "ruby", "node", "xargs", "eval", "source")

	// readOnlyCmds keep common inspection commands from being tagged
	// Unknown, which would otherwise push them toward Moderate.
	readOnlyCmds = set("ls", "cat", "head", "tail", "less", "more", "grep", "rg",
		"find", "wc", "du", "df", "stat", "file", "pwd", "echo", "printf", "env",
		"printenv", "which", "whereis", "type", "ps", "top", "uname", "whoami",
		"hostname", "date", "uptime", "id", "man", "git", "diff", "sort", "uniq",
		"cut", "awk", "sed", "tr", "basename", "dirname", "readlink", "tree",
		"true", "false", "sleep", "cd", "export", "jq", "yq")
)

// wrapperValueOpts lists, per wrapper, the options that consume the next
// argument, so "sudo -u root rm" folds to rm rather than root.
var wrapperValueOpts = map[string]map[string]bool{
	"sudo": set("-u", "-g", "-h", "-p", "-C", "-U", "-r", "-t", "-T", "-R", "-D",
		"--user", "--group", "--host", "--prompt", "--close-from", "--other-user",
		"--role", "--type", "--command-timeout", "--chroot", "--chdir"),
	"doas":    set("-u", "-C", "-t"),
	"pkexec":  set("--user"),
	"env":     set("-u", "-C", "-P", "-S", "--unset", "--chdir", "--split-string"),
	"nice":    set("-n", "--adjustment"),
	"timeout": set("-k", "-s", "--kill-after", "--signal"),
	"stdbuf":  set("-i", "-o", "-e", "--input", "--output", "--error"),
	"ionice":  set("-c", "-n", "-t", "--class", "--classdata"),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		m[name] = true
	}
	return m
}

// baseName strips any directory prefix so /usr/bin/rm matches rm.
func baseName(name string) string {
	if name == "" {
		return ""
	}
	return path.Base(name)
}

func firstNonFlag(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}

// hasShortFlag reports whether any clustered short-flag argument contains
// the given letter, so -rf satisfies both 'r' and 'f'.
func (s rawSeg) hasShortFlag(letter rune) bool {
	for _, arg := range s.args {
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		if strings.ContainsRune(arg[1:], letter) {
			return true
		}
	}
	return false
}

func (s rawSeg) hasLongFlag(flag string) bool {
	for _, arg := range s.args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}
	return false
}

// targets returns the path-like arguments plus redirection destinations.
func (s rawSeg) targets() []string {
	var out []string
	for _, arg := range s.args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if looksLikePath(arg) {
			out = append(out, arg)
		}
	}
	out = append(out, s.redirOut...)
	return out
}

func looksLikePath(arg string) bool {
	switch {
	case arg == "", arg == "-":
		return false
	case strings.Contains(arg, "://"):
		return false // URLs are fetch arguments, not filesystem paths
	case strings.Contains(arg, "/"):
		return true
	case strings.HasPrefix(arg, "~"), strings.HasPrefix(arg, "$HOME"):
		return true
	case arg == "*" || arg == ".":
		return true
	}
	return false
}
