package ui

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Stats holds the aggregate figures shown at the top of the dashboard.
type Stats struct {
	TotalBuckets   uint64
	TotalObjects   uint64
	TotalSizeHuman string
	APIAddr        string
}

// Bucket represents a single bucket for display.
type Bucket struct {
	Name        string
	Region      string
	CreatedAt   string
	ObjectCount uint64
	SizeHuman   string
}

// Layout renders a full HTML page with a title and body component.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<!DOCTYPE html><html lang=\"en\">")
		if err != nil {
			return err
		}

		// Head
		_, err = io.WriteString(w, "<head><meta charset=\"utf-8\">")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<title>")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html.EscapeString(title))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "</title>")
		if err != nil {
			return err
		}
		// Minimal modern CSS framework (Pico.css) via CDN.
		_, err = io.WriteString(w, "<link rel=\"stylesheet\" href=\"https://unpkg.com/@picocss/pico@2/css/pico.min.css\">")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "</head>")
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, "<body><main class=\"container\">")
		if err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err = io.WriteString(w, "</main></body></html>")
		return err
	})
}

// DashboardPage renders the storage manager: aggregate stats, the bucket
// list with browse/delete actions, a create-bucket dialog, and an object
// browser dialog with upload, download, and delete driven by the JSON
// control API.
func DashboardPage(stats Stats, buckets []Bucket) templ.Component {
	return Layout("FreeBucket", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<section><header><h1>FreeBucket</h1>")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<p>Local S3-compatible object storage.</p></header>")
		if err != nil {
			return err
		}

		summary := fmt.Sprintf(
			"<div class=\"grid\"><article><h2>%d</h2><p>Buckets</p></article><article><h2>%d</h2><p>Objects</p></article><article><h2>%s</h2><p>Stored</p></article><article><h2>API</h2><p><code>%s</code></p></article></div>",
			stats.TotalBuckets, stats.TotalObjects, html.EscapeString(stats.TotalSizeHuman), html.EscapeString(stats.APIAddr),
		)
		_, err = io.WriteString(w, summary)
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, "<p id=\"status\" aria-live=\"polite\"></p>")
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, "<header style=\"display:flex;justify-content:space-between;align-items:center\"><h2>Buckets</h2>")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<button onclick=\"showCreateBucket()\">Create bucket</button></header>")
		if err != nil {
			return err
		}

		if len(buckets) == 0 {
			_, err = io.WriteString(w, "<p>No buckets yet. Create your first bucket to start storing objects.</p>")
			if err != nil {
				return err
			}
		} else {
			if err := renderBucketTable(w, buckets); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "</section>")
		if err != nil {
			return err
		}

		if err := renderCreateBucketDialog(w); err != nil {
			return err
		}
		if err := renderObjectBrowserDialog(w); err != nil {
			return err
		}

		_, err = io.WriteString(w, "<script>"+dashboardScript+"</script>")
		return err
	}))
}

// renderBucketTable writes the bucket rows. Bucket names are restricted to
// [a-z0-9.-], so they are safe inside the single-quoted onclick arguments.
func renderBucketTable(w io.Writer, buckets []Bucket) error {
	_, err := io.WriteString(w, "<table><thead><tr><th>Name</th><th>Region</th><th>Objects</th><th>Size</th><th>Created</th><th></th></tr></thead><tbody>")
	if err != nil {
		return err
	}

	for _, b := range buckets {
		name := html.EscapeString(b.Name)
		row := fmt.Sprintf(
			"<tr><td><a href=\"#\" onclick=\"openBucket('%s');return false\">%s</a></td><td>%s</td><td>%d</td><td>%s</td><td>%s</td>"+
				"<td><button class=\"secondary\" onclick=\"openBucket('%s')\">Browse</button> "+
				"<button class=\"contrast\" onclick=\"deleteBucket('%s')\">Delete</button></td></tr>",
			name, name, html.EscapeString(b.Region), b.ObjectCount, html.EscapeString(b.SizeHuman), html.EscapeString(b.CreatedAt),
			name, name)
		_, err = io.WriteString(w, row)
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, "</tbody></table>")
	return err
}

func renderCreateBucketDialog(w io.Writer) error {
	_, err := io.WriteString(w, "<dialog id=\"create-dialog\"><article><header><h3>Create new bucket</h3></header>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<label for=\"bucket-name\">Bucket name</label>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<input id=\"bucket-name\" type=\"text\" placeholder=\"my-bucket\" autocomplete=\"off\" onkeydown=\"if(event.key==='Enter')createBucket()\">")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<small>3&ndash;63 characters. Lowercase letters, digits, hyphens, periods.</small>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<label for=\"bucket-region\">Region</label>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<input id=\"bucket-region\" type=\"text\" value=\"local\">")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<footer><button class=\"secondary\" onclick=\"closeDialog('create-dialog')\">Cancel</button>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<button onclick=\"createBucket()\">Create</button></footer></article></dialog>")
	return err
}

func renderObjectBrowserDialog(w io.Writer) error {
	_, err := io.WriteString(w, "<dialog id=\"browser-dialog\"><article style=\"min-width:60%\"><header>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<h3 id=\"browser-bucket\"></h3></header>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<input id=\"file-input\" type=\"file\" multiple onchange=\"handleFileSelect(event)\">")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<table><thead><tr><th>Key</th><th>Size</th><th>Last modified</th><th></th></tr></thead>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<tbody id=\"object-rows\"></tbody></table>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<footer><button class=\"secondary\" onclick=\"closeDialog('browser-dialog')\">Close</button></footer></article></dialog>")
	return err
}

// dashboardScript drives the page against the JSON control API.
const dashboardScript = `
const api = '/api';
let currentBucket = '';

function setStatus(message, isError) {
    const el = document.getElementById('status');
    el.textContent = message;
    el.style.color = isError ? 'var(--pico-del-color, #b71c1c)' : '';
    if (message) setTimeout(() => { if (el.textContent === message) el.textContent = ''; }, 4000);
}

function closeDialog(id) {
    document.getElementById(id).close();
}

function showCreateBucket() {
    document.getElementById('bucket-name').value = '';
    document.getElementById('bucket-region').value = 'local';
    document.getElementById('create-dialog').showModal();
    document.getElementById('bucket-name').focus();
}

async function createBucket() {
    const name = document.getElementById('bucket-name').value.trim();
    const region = document.getElementById('bucket-region').value.trim() || 'local';
    if (!name) {
        setStatus('Please enter a bucket name', true);
        return;
    }
    try {
        const res = await fetch(api + '/buckets', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ name, region })
        });
        if (!res.ok) {
            const err = await res.json();
            setStatus(err.message || 'Failed to create bucket', true);
            return;
        }
        location.reload();
    } catch (e) {
        setStatus('Network error: ' + e.message, true);
    }
}

async function deleteBucket(name) {
    if (!confirm('Delete bucket "' + name + '"? This cannot be undone.')) return;
    try {
        const res = await fetch(api + '/buckets/' + encodeURIComponent(name), { method: 'DELETE' });
        if (!res.ok) {
            const err = await res.json();
            setStatus(err.message || 'Failed to delete bucket', true);
            return;
        }
        location.reload();
    } catch (e) {
        setStatus('Network error: ' + e.message, true);
    }
}

async function openBucket(name) {
    currentBucket = name;
    document.getElementById('browser-bucket').textContent = name;
    document.getElementById('browser-dialog').showModal();
    await refreshObjects();
}

function encodeKey(key) {
    return key.split('/').map(encodeURIComponent).join('/');
}

async function refreshObjects() {
    const body = document.getElementById('object-rows');
    body.innerHTML = '<tr><td colspan="4">Loading&hellip;</td></tr>';
    try {
        const res = await fetch(api + '/buckets/' + encodeURIComponent(currentBucket) + '/objects');
        if (!res.ok) throw new Error('listing failed');
        const data = await res.json();
        if (!data.objects || data.objects.length === 0) {
            body.innerHTML = '<tr><td colspan="4">No objects in this bucket</td></tr>';
            return;
        }
        body.innerHTML = data.objects.map(obj => {
            const key = escapeHtml(obj.key);
            const date = new Date(obj.last_modified).toLocaleString();
            return '<tr><td>' + key + '</td><td>' + humanSize(obj.size) + '</td><td>' + date + '</td>' +
                '<td><button class="secondary" onclick="downloadObject(\'' + key + '\')">Download</button> ' +
                '<button class="contrast" onclick="deleteObject(\'' + key + '\')">Delete</button></td></tr>';
        }).join('');
    } catch (e) {
        body.innerHTML = '<tr><td colspan="4">Error loading objects</td></tr>';
        setStatus('Failed to load objects', true);
    }
}

function downloadObject(key) {
    const a = document.createElement('a');
    a.href = api + '/object/' + encodeURIComponent(currentBucket) + '/' + encodeKey(key);
    a.download = key.split('/').pop();
    document.body.appendChild(a);
    a.click();
    a.remove();
}

async function deleteObject(key) {
    if (!confirm('Delete object "' + key + '"?')) return;
    try {
        const res = await fetch(api + '/object/' + encodeURIComponent(currentBucket) + '/' + encodeKey(key), { method: 'DELETE' });
        if (!res.ok) {
            setStatus('Failed to delete object', true);
            return;
        }
        setStatus('Object deleted');
        await refreshObjects();
    } catch (e) {
        setStatus('Network error: ' + e.message, true);
    }
}

function handleFileSelect(event) {
    const files = event.target.files;
    if (files.length > 0) uploadFiles(files);
    event.target.value = '';
}

async function uploadFiles(files) {
    const formData = new FormData();
    for (let i = 0; i < files.length; i++) {
        formData.append('file', files[i]);
    }
    try {
        setStatus('Uploading ' + files.length + ' file(s)…');
        const res = await fetch(api + '/buckets/' + encodeURIComponent(currentBucket) + '/upload', {
            method: 'POST',
            body: formData
        });
        if (!res.ok) {
            setStatus('Upload failed', true);
            return;
        }
        const data = await res.json();
        setStatus(data.uploaded + ' file(s) uploaded');
        await refreshObjects();
    } catch (e) {
        setStatus('Upload error: ' + e.message, true);
    }
}

function humanSize(bytes) {
    const units = ['B', 'KB', 'MB', 'GB', 'TB'];
    let i = 0;
    let size = bytes;
    while (size >= 1024 && i < units.length - 1) {
        size /= 1024;
        i++;
    }
    return i === 0 ? bytes + ' B' : size.toFixed(2) + ' ' + units[i];
}

function escapeHtml(str) {
    const div = document.createElement('div');
    div.textContent = str;
    return div.innerHTML;
}
`
