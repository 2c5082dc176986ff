package analysis

import (
	"path"
	"strings"

	"github.com/tolkachev/bsema/internal/modules"
)

// Plural metadata directory names of a designer source dump, mapped to the
// singular form used inside mdo refs.
var metadataDirs = map[string]string{
	"catalogs":             "Catalog",
	"documents":            "Document",
	"dataprocessors":       "DataProcessor",
	"reports":              "Report",
	"informationregisters": "InformationRegister",
	"accumulationregisters": "AccumulationRegister",
	"enums":                "Enum",
	"commonforms":          "CommonForm",
}

// Module file names inside an Ext directory, mapped to their kind.
var extFileKinds = map[string]modules.Kind{
	"module":                    modules.CommonModule,
	"objectmodule":              modules.ObjectModule,
	"managermodule":             modules.ManagerModule,
	"commandmodule":             modules.CommandModule,
	"recordsetmodule":           modules.RecordSetModule,
	"valuemanagermodule":        modules.ValueManagerModule,
	"sessionmodule":             modules.SessionModule,
	"managedapplicationmodule":  modules.ManagedApplicationModule,
	"ordinaryapplicationmodule": modules.OrdinaryApplicationModule,
	"externalconnectionmodule":  modules.ExternalConnectionModule,
}

// DeriveModule maps a configuration-relative path to the module identity of
// the file, following the 1C designer dump layout:
//
//	CommonModules/<Name>/Ext/Module.bsl            -> <Name>, CommonModule
//	Catalogs/<Name>/Ext/ObjectModule.bsl           -> Catalog.<Name>, ObjectModule
//	Catalogs/<Name>/Forms/<F>/Ext/Form/Module.bsl  -> Catalog.<Name>.Form.<F>, FormModule
//	Ext/SessionModule.bsl                          -> Configuration, SessionModule
//
// Anything else falls back to a common module named after the file base,
// so flat test layouts like "formA.bsl" still resolve.
func DeriveModule(relPath string) (string, modules.Kind) {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	parts := strings.Split(relPath, "/")
	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))

	// Form modules: .../Forms/<F>/Ext/Form/Module.bsl
	if n := indexFold(parts, "forms"); n > 0 && n+1 < len(parts) && strings.EqualFold(base, "module") {
		formName := parts[n+1]
		if owner, kind := ownerRef(parts[:n]); kind != modules.UnknownModule {
			return owner + ".Form." + formName, modules.FormModule
		}
		return "CommonForm." + formName, modules.FormModule
	}

	// Common modules: CommonModules/<Name>/Ext/Module.bsl
	if len(parts) >= 2 && strings.EqualFold(parts[0], "commonmodules") {
		return parts[1], modules.CommonModule
	}

	// Common forms: CommonForms/<Name>/Ext/Form/Module.bsl
	if len(parts) >= 2 && strings.EqualFold(parts[0], "commonforms") && strings.EqualFold(base, "module") {
		return "CommonForm." + parts[1], modules.FormModule
	}

	// Configuration root modules: Ext/SessionModule.bsl and friends.
	if len(parts) == 2 && strings.EqualFold(parts[0], "ext") {
		if kind, ok := extFileKinds[strings.ToLower(base)]; ok && kind != modules.CommonModule {
			return "Configuration", kind
		}
	}

	// Metadata object modules: Catalogs/<Name>/Ext/<Kind>.bsl
	if owner, _ := ownerRef(parts); owner != "" {
		if kind, ok := extFileKinds[strings.ToLower(base)]; ok && kind != modules.CommonModule {
			return owner, kind
		}
	}

	return base, modules.CommonModule
}

// ownerRef extracts "<Singular>.<Name>" from a path prefix like
// ["Catalogs", "Товары", ...].
func ownerRef(parts []string) (string, modules.Kind) {
	if len(parts) < 2 {
		return "", modules.UnknownModule
	}
	singular, ok := metadataDirs[strings.ToLower(parts[0])]
	if !ok {
		return "", modules.UnknownModule
	}
	return singular + "." + parts[1], modules.ObjectModule
}

func indexFold(parts []string, want string) int {
	for n, part := range parts {
		if strings.EqualFold(part, want) {
			return n
		}
	}
	return -1
}
