package server

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Console lines. The English text doubles as the catalog key.
const (
	msgStarted     = "🌐 Server started on %s\n"
	msgServingRoot = "📂 Serving %s\n"
	msgLANNote     = "📱 Accessible from other devices on your local network\n"
	msgReloadHint  = "🔄 Changes are visible after refreshing the browser\n"
	msgWatching    = "👀 Watching for changes...\n"
	msgCreated     = "✨ Created: %s\n"
	msgModified    = "🔄 Modified: %s\n"
	msgRemoved     = "🗑️  Removed: %s\n"
	msgStopping    = "\n🛑 Shutting down server...\n"
	msgStopped     = "🛑 Server stopped\n"
	msgSummary     = "📊 Served %d requests (%d not found) in %v\n"
)

var frenchMessages = map[string]string{
	msgStarted:     "🌐 Serveur démarré sur %s\n",
	msgServingRoot: "📂 Dossier servi : %s\n",
	msgLANNote:     "📱 Accessible depuis les autres appareils de votre réseau local\n",
	msgReloadHint:  "🔄 Les changements seront visibles après actualisation du navigateur\n",
	msgWatching:    "👀 Surveillance des modifications...\n",
	msgCreated:     "✨ Créé : %s\n",
	msgModified:    "🔄 Modifié : %s\n",
	msgRemoved:     "🗑️  Supprimé : %s\n",
	msgStopping:    "\n🛑 Arrêt du serveur...\n",
	msgStopped:     "🛑 Serveur arrêté\n",
	msgSummary:     "📊 %d requêtes servies (%d introuvables) en %v\n",
}

func init() {
	for key, msg := range frenchMessages {
		_ = message.SetString(language.French, key, msg)
	}
}

// newPrinter returns the console printer for a config language code.
func newPrinter(lang string) *message.Printer {
	tag := language.English
	if lang == "fr" {
		tag = language.French
	}
	return message.NewPrinter(tag)
}
