package browser

// bootstrap installs the document store and the default stage functions in
// a fresh page. Project scripts replace docere.normalize, docere.entities,
// docere.metadata and docere.facsimiles.
const bootstrap = `() => {
	const docere = {
		normalize: (doc) => doc,
		entities: () => [],
		metadata: () => ({}),
		facsimiles: () => [],
	}
	const store = { seq: 0, docs: new Map(), config: null }
	const keep = (doc) => {
		const handle = ++store.seq
		store.docs.set(handle, doc)
		return { handle, text: doc.documentElement ? doc.documentElement.textContent : '' }
	}
	const get = (handle) => {
		const doc = store.docs.get(handle)
		if (doc == null) throw new Error('unknown document handle ' + handle)
		return doc
	}
	const parser = new DOMParser()
	const parsererrorNS = parser.parseFromString('INVALID', 'text/xml')
		.getElementsByTagName('parsererror')[0].namespaceURI

	window.docere = docere
	window.__docere = {
		configure: (config) => { store.config = config },
		ready: () => ['normalize', 'entities', 'metadata', 'facsimiles']
			.filter((name) => typeof docere[name] !== 'function'),
		parse: (xml) => {
			const doc = parser.parseFromString(xml, 'application/xml')
			const errors = doc.getElementsByTagNameNS(parsererrorNS, 'parsererror')
			if (errors.length) throw new Error(errors[0].textContent)
			return keep(doc)
		},
		normalize: async (handle, id) => {
			const doc = await docere.normalize(get(handle), store.config, id)
			if (doc == null) throw new Error('normalize returned no document')
			return keep(doc)
		},
		entities: async (handle) => (await docere.entities(get(handle), store.config)) || [],
		metadata: async (handle, id) => (await docere.metadata(get(handle), store.config, id)) || {},
		facsimiles: async (handle) => (await docere.facsimiles(get(handle), store.config)) || [],
		release: (handle) => { store.docs.delete(handle) },
		size: () => store.docs.size,
	}
}`
