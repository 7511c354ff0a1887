// Package paths derives every on-disk and public location the bot uses from
// the configured data directory, public directory and public base URL.
package paths

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	repostConfName = "repost.conf"
	pagesDir       = "pages"
	postsDir       = "posts"
	pageFileName   = "page.json"
)

type Paths struct {
	dataPath      string
	publicPath    string
	publicPathURL string
	repostConf    string
}

// New trims one trailing slash from publicPathURL. An empty repostConf means
// repost.conf inside the data directory.
func New(dataPath, publicPath, publicPathURL, repostConf string) *Paths {
	if repostConf == "" {
		repostConf = filepath.Join(dataPath, repostConfName)
	}
	return &Paths{
		dataPath:      dataPath,
		publicPath:    publicPath,
		publicPathURL: strings.TrimSuffix(publicPathURL, "/"),
		repostConf:    repostConf,
	}
}

func (p *Paths) DataPath() string {
	return p.dataPath
}

func (p *Paths) RepostConf() string {
	return p.repostConf
}

// PageNamespace is the cache namespace of a page. It is a pure function of the id.
func PageNamespace(pageID int64) string {
	return pagesDir + "/" + strconv.FormatInt(pageID, 10)
}

func (p *Paths) PageDir(pageID int64) string {
	return filepath.Join(p.dataPath, filepath.FromSlash(PageNamespace(pageID)))
}

func (p *Paths) PageFile(pageID int64) string {
	return filepath.Join(p.PageDir(pageID), pageFileName)
}

// EntryFile maps a cache key (namespace + post id) to its JSON file.
func (p *Paths) EntryFile(namespace, postID string) string {
	return filepath.Join(p.dataPath, filepath.FromSlash(namespace), postsDir, postID+".json")
}

func (p *Paths) PublicFile(name string) string {
	return filepath.Join(p.publicPath, name)
}

func (p *Paths) PublicURL(name string) string {
	return p.publicPathURL + "/" + name
}

// PhotoName is the public file name of a downloaded photo attachment.
func PhotoName(objectID int64) string {
	return strconv.FormatInt(objectID, 10) + ".jpg"
}
