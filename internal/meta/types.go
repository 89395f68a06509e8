package meta

// Endpoints holds the base URLs of every remote metadata source
type Endpoints struct {
	FabricMeta       string // e.g. https://meta.fabricmc.net/v2
	QuiltMeta        string // e.g. https://meta.quiltmc.org/v3
	NeoForgeManifest string // Modrinth launcher-meta manifest for NeoForge
	NeoForgeMavenAPI string // NeoForge maven versions API
}

// DefaultEndpoints returns the public metadata endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		FabricMeta:       "https://meta.fabricmc.net/v2",
		QuiltMeta:        "https://meta.quiltmc.org/v3",
		NeoForgeManifest: "https://launcher-meta.modrinth.com/neo/v0/manifest.json",
		NeoForgeMavenAPI: "https://maven.neoforged.net/api/maven/versions/releases/net/neoforged/neoforge",
	}
}

// loaderEntry is one element of the Fabric and Quilt /versions/loader lists.
// Quilt omits Stable.
type loaderEntry struct {
	Separator string `json:"separator"`
	Build     int    `json:"build"`
	Maven     string `json:"maven"`
	Version   string `json:"version"`
	Stable    *bool  `json:"stable"`
}

// neoForgeManifest is the Modrinth launcher-meta manifest for NeoForge
type neoForgeManifest struct {
	GameVersions []struct {
		ID      string `json:"id"`
		Stable  bool   `json:"stable"`
		Loaders []struct {
			ID     string `json:"id"`
			URL    string `json:"url"`
			Stable bool   `json:"stable"`
		} `json:"loaders"`
	} `json:"gameVersions"`
}

// mavenVersions is the NeoForge maven API response
type mavenVersions struct {
	IsSnapshot bool     `json:"isSnapshot"`
	Versions   []string `json:"versions"`
}
